package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"resume-extractor/internal/config"
	"resume-extractor/internal/extractor"
	"resume-extractor/internal/nlp"
	"resume-extractor/internal/parser"
	"resume-extractor/internal/schema"
	"resume-extractor/internal/types"
)

type outputOptions struct {
	out        string
	pretty     bool
	recognizer string
	validate   bool
}

func (o *outputOptions) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.out, "out", "o", "", "Write JSON to this file instead of stdout")
	cmd.Flags().BoolVar(&o.pretty, "pretty", false, "Indent JSON output")
	cmd.Flags().StringVar(&o.recognizer, "recognizer", "", "Entity recognizer: heuristic, llm or none (overrides nlp.provider)")
	cmd.Flags().BoolVar(&o.validate, "validate", false, "Validate the record against the output schema before writing")
}

func newExtractCmd(root *rootOptions) *cobra.Command {
	var out outputOptions
	cmd := &cobra.Command{
		Use:   "extract <file>",
		Short: "Extract a structured record from a PDF/DOCX file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read input file: %w", err)
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			dispatcher, err := parser.NewDispatcherFromConfig(ctx, cfg.Extractor, cfg.Tika)
			if err != nil {
				return err
			}
			text, err := dispatcher.ExtractBytes(ctx, args[0], data)
			if err != nil {
				return err
			}

			core, err := buildExtractor(cfg, out.recognizer)
			if err != nil {
				return err
			}
			return writeRecord(cmd.OutOrStdout(), core.ToStructuredRecord(ctx, text), out)
		},
	}
	out.bind(cmd)
	return cmd
}

func newTextCmd(root *rootOptions) *cobra.Command {
	var (
		in  string
		out outputOptions
	)
	cmd := &cobra.Command{
		Use:   "text",
		Short: "Extract a structured record from raw resume text",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}

			var raw []byte
			if in == "" || in == "-" {
				raw, err = io.ReadAll(cmd.InOrStdin())
			} else {
				raw, err = os.ReadFile(in)
			}
			if err != nil {
				return fmt.Errorf("failed to read input: %w", err)
			}

			core, err := buildExtractor(cfg, out.recognizer)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return writeRecord(cmd.OutOrStdout(), core.ToStructuredRecord(ctx, string(raw)), out)
		},
	}
	cmd.Flags().StringVarP(&in, "in", "i", "-", "Path to a text file, - for stdin")
	out.bind(cmd)
	return cmd
}

func buildExtractor(cfg *config.Config, recognizer string) (*extractor.Extractor, error) {
	nlpCfg := cfg.NLP
	if recognizer != "" {
		nlpCfg.Provider = recognizer
	}
	rec, err := nlp.NewRecognizer(nlpCfg)
	if err != nil {
		return nil, err
	}

	opts := []extractor.Option{
		extractor.WithRecognizer(rec),
		extractor.WithMaxRecognizerInput(cfg.Extractor.MaxRecognizerInput),
	}
	if cfg.Extractor.VocabularyPath != "" {
		vocab, err := extractor.LoadVocabularyFile(cfg.Extractor.VocabularyPath)
		if err != nil {
			return nil, err
		}
		opts = append(opts, extractor.WithVocabulary(vocab))
	}
	return extractor.New(opts...), nil
}

func writeRecord(stdout io.Writer, record *types.ResumeRecord, opts outputOptions) error {
	if opts.validate {
		if err := schema.ValidateRecord(record); err != nil {
			return err
		}
	}

	var (
		data []byte
		err  error
	)
	if opts.pretty {
		data, err = json.MarshalIndent(record, "", "  ")
	} else {
		data, err = json.Marshal(record)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}
	data = append(data, '\n')

	if strings.TrimSpace(opts.out) == "" {
		_, err = stdout.Write(data)
		return err
	}
	if err := os.WriteFile(opts.out, data, 0o644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}
