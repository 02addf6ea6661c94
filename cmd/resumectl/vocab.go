package main

import (
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"resume-extractor/internal/extractor"
)

func newVocabCmd(root *rootOptions) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "vocab",
		Short: "Print the active vocabulary (headers, degree words, skills) as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := file
			if path == "" {
				cfg, err := root.loadConfig()
				if err != nil {
					return err
				}
				path = cfg.Extractor.VocabularyPath
			}

			vocab := extractor.DefaultVocabulary()
			if path != "" {
				var err error
				if vocab, err = extractor.LoadVocabularyFile(path); err != nil {
					return err
				}
			}

			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(vocab); err != nil {
				return err
			}
			return enc.Close()
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "Vocabulary YAML file (defaults to extractor.vocabulary_path, then the built-in list)")
	return cmd
}
