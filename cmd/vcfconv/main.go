// Command vcfconv converts between VCF-TEXT and VCF-BIN, and reports
// Dictionary statistics for either encoding.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/urfave/cli"

	"github.com/chromacode/vcf"
	"github.com/chromacode/vcf/diag"
	"github.com/chromacode/vcf/refidx"
)

func loggerFromContext(c *cli.Context) *diag.Logger {
	level := diag.LevelWarning + diag.Level(c.GlobalInt("v"))
	if level > diag.LevelDebug {
		level = diag.LevelDebug
	}
	return diag.New(os.Stderr, level)
}

func openReader(c *cli.Context, filePath string) (*vcf.Reader, error) {
	var ref refidx.ReferenceIndex
	if faiPath := c.String("ref"); faiPath != "" {
		f, err := os.Open(faiPath)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		ref = refidx.NewFaiReader(f)
	}
	return vcf.OpenReader(filePath, vcf.ReaderOptions{Ref: ref, Log: loggerFromContext(c)})
}

func totextCommand(c *cli.Context) error {
	filePath := c.Args().First()
	if filePath == "" {
		return cli.NewExitError("vcfconv: totext requires a FILE argument", 1)
	}
	r, err := openReader(c, filePath)
	if err != nil {
		return err
	}
	w, err := vcf.NewWriter(os.Stdout, r.Header, vcf.FormatText)
	if err != nil {
		return err
	}
	_, err = vcf.Convert(w, r)
	return err
}

func tobinCommand(c *cli.Context) error {
	filePath := c.Args().First()
	if filePath == "" {
		return cli.NewExitError("vcfconv: tobin requires a FILE argument", 1)
	}
	r, err := openReader(c, filePath)
	if err != nil {
		return err
	}
	w, err := vcf.NewWriter(os.Stdout, r.Header, vcf.FormatBin)
	if err != nil {
		return err
	}
	_, err = vcf.Convert(w, r)
	return err
}

func statCommand(c *cli.Context) error {
	filePath := c.Args().First()
	if filePath == "" {
		return cli.NewExitError("vcfconv: stat requires a FILE argument", 1)
	}
	r, err := openReader(c, filePath)
	if err != nil {
		return err
	}
	fmt.Printf("contigs: %d\n", r.Dict.Len(0))
	fmt.Printf("ids (INFO/FILTER/FORMAT): %d\n", r.Dict.Len(1))
	fmt.Printf("samples: %d\n", r.Dict.Len(2))
	return nil
}

func main() {
	app := cli.NewApp()
	app.Name = "vcfconv"
	app.Usage = "convert between VCF-TEXT and VCF-BIN"
	app.Flags = []cli.Flag{
		cli.IntFlag{
			Name:  "v",
			Usage: "raise diagnostic verbosity by N levels above warning (capped at debug)",
		},
	}
	app.Commands = []cli.Command{
		cli.Command{
			Name:      "totext",
			Usage:     "read VCF-BIN, write VCF-TEXT to stdout",
			ArgsUsage: "FILE",
			Action:    totextCommand,
		},
		cli.Command{
			Name:      "tobin",
			Usage:     "read VCF-TEXT, write VCF-BIN to stdout",
			ArgsUsage: "FILE",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "ref",
					Usage: "FASTA index (.fai) to synthesize ##contig lines from",
				},
			},
			Action: tobinCommand,
		},
		cli.Command{
			Name:      "stat",
			Usage:     "print Dictionary sizes per category",
			ArgsUsage: "FILE",
			Action:    statCommand,
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatalf("%+v", err)
	}
}
