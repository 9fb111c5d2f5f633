package main

import (
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newDataCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "data",
		Short: "Query the document ingestion functions",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List ingested documents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.docsClient()
			if err != nil {
				return err
			}
			docs, err := client.ListIngestedData(cmd.Context())
			if err != nil {
				return errors.Wrap(err, "listing ingested data")
			}
			printDocuments(cmd.OutOrStdout(), docs)
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "show <id>",
		Short: "Print one document's details as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.docsClient()
			if err != nil {
				return err
			}
			doc, err := client.GetDocumentDetails(cmd.Context(), args[0])
			if err != nil {
				return errors.Wrapf(err, "fetching document %s", args[0])
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(doc)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a document from the ingestion store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.docsClient()
			if err != nil {
				return err
			}
			if err := client.DeleteDocument(cmd.Context(), args[0]); err != nil {
				return errors.Wrapf(err, "deleting document %s", args[0])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return nil
		},
	})
	return cmd
}
