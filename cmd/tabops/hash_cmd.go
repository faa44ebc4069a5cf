package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tabops/tabops/pkg/config"
	"github.com/tabops/tabops/pkg/hashfile"
	"github.com/tabops/tabops/pkg/listing"
	"github.com/tabops/tabops/pkg/tui"
)

var (
	hashDir        string
	hashExt        string
	hashSubfolders bool
	hashAlgo       string

	verifyFile     string
	verifyExpected string
	verifyAlgo     string
	verifyManifest string
)

var hashCmd = &cobra.Command{
	Use:   "hash",
	Short: "Create hash manifests for a data directory",
	Long: `Hash every matching file in a directory and write a manifest listing
file names, digests, and modification times.

Examples:
  tabops hash -d ./data -e csv
  tabops hash -d ./data -e parquet --subfolders --algo sha256`,
	RunE: runHash,
}

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify file hashes",
	Long: `Verify a single file against an expected digest, or re-check every
entry of a previously written manifest.

Examples:
  tabops verify --file data.csv --hash 9f2c...
  tabops verify --manifest ./data/01-hashes-data-20260829.txt`,
	RunE: runVerify,
}

func init() {
	hashCmd.Flags().StringVarP(&hashDir, "dir", "d", "", "Directory to hash (required)")
	hashCmd.Flags().StringVarP(&hashExt, "ext", "e", "", "File extension to hash (required)")
	hashCmd.Flags().BoolVar(&hashSubfolders, "subfolders", false, "Also write a manifest per immediate subdirectory")
	hashCmd.Flags().StringVar(&hashAlgo, "algo", "", "Hash algorithm (blake2b|sha256|sha512)")
	hashCmd.MarkFlagRequired("dir")
	hashCmd.MarkFlagRequired("ext")

	verifyCmd.Flags().StringVar(&verifyFile, "file", "", "File to verify")
	verifyCmd.Flags().StringVar(&verifyExpected, "hash", "", "Expected digest")
	verifyCmd.Flags().StringVar(&verifyAlgo, "algo", "", "Hash algorithm (blake2b|sha256|sha512)")
	verifyCmd.Flags().StringVar(&verifyManifest, "manifest", "", "Manifest file to re-check")
}

func runHash(cmd *cobra.Command, args []string) error {
	algo := hashAlgo
	if algo == "" {
		algo = config.Discover().Hash.Algorithm
	}

	dirs := []string{hashDir}
	if hashSubfolders {
		subdirs, err := listing.Subdirs(hashDir)
		if err != nil {
			return err
		}
		dirs = append(dirs, subdirs...)
	}

	bar := tui.NewProgress(len(dirs), "hashing files")
	for _, dir := range dirs {
		path, n, err := hashfile.CreateManifest(dir, hashExt, algo, time.Now())
		if err != nil {
			return err
		}
		bar.Add(1)
		tui.Mutedf("%s: %d entries", path, n)
	}
	bar.Finish()

	tui.Successf("files hashed successfully")
	return nil
}

func runVerify(cmd *cobra.Command, args []string) error {
	if verifyManifest != "" {
		if err := hashfile.VerifyManifest(verifyManifest); err != nil {
			return err
		}
		tui.Successf("all manifest entries verified")
		return nil
	}

	if verifyFile == "" || verifyExpected == "" {
		return fmt.Errorf("either --manifest or both --file and --hash are required")
	}

	algo := verifyAlgo
	if algo == "" {
		algo = config.Discover().Hash.Algorithm
	}

	ok, err := hashfile.Verify(verifyFile, verifyExpected, algo)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("hash of %s does not match", verifyFile)
	}
	tui.Successf("hash of %s is valid", verifyFile)
	return nil
}
