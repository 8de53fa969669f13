package main

import (
	"fmt"
	"io"
	"os"

	"github.com/couchcryptid/parcel-geodata-service/internal/pipeline"
	"github.com/spf13/cobra"
)

func batchCmd(a *app) *cobra.Command {
	var (
		kind      string
		inputEnc  string
		batchSize int
		workers   int
	)

	c := &cobra.Command{
		Use:   "batch [file]",
		Short: "Run one lookup per input line and print JSON lines (stdin when no file or \"-\")",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tfm, err := pipeline.NewTransformer(a.svc, pipeline.Kind(kind))
			if err != nil {
				return err
			}

			var in io.Reader = cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}

			in, err = pipeline.DecodeReader(in, inputEnc)
			if err != nil {
				return err
			}

			p := pipeline.New(pipeline.NewLineSource(in), tfm, pipeline.NewJSONLinesSink(cmd.OutOrStdout()), a.logger, batchSize, workers)
			sum, err := p.Run(cmd.Context())
			if err != nil {
				return err
			}
			if sum.Failed > 0 {
				return fmt.Errorf("%d of %d lookups failed", sum.Failed, sum.Processed)
			}
			return nil
		},
	}

	c.Flags().StringVar(&kind, "kind", string(pipeline.KindParcel), "query kind per line: parcel|point|address|catchment")
	c.Flags().StringVar(&inputEnc, "encoding", pipeline.EncodingUTF8, "input encoding: utf-8|windows-1250|iso-8859-2")
	c.Flags().IntVar(&batchSize, "batch-size", 50, "lines resolved per batch")
	c.Flags().IntVar(&workers, "workers", 4, "concurrent lookups per batch")
	return c
}
