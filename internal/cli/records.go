package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/pmstore/pkg/types"
)

// parseID parses a positional id argument.
func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, usageError("id %q is not an integer", arg)
	}
	return id, nil
}

func newGetCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "get <table> <id>",
		Short: "Print one record",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[1])
			if err != nil {
				return err
			}
			return withStore(cmd, flags, func(e *env) error {
				tbl, err := e.store.GetTable(args[0])
				if err != nil {
					return err
				}
				row, err := tbl.Get(id)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), row)
			})
		},
	}
}

func newListCmd(flags *rootFlags) *cobra.Command {
	var offset, limit int
	cmd := &cobra.Command{
		Use:   "list <table>",
		Short: "Print records in id order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, flags, func(e *env) error {
				tbl, err := e.store.GetTable(args[0])
				if err != nil {
					return err
				}
				rows, err := tbl.List(offset, limit)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), rows)
			})
		},
	}
	cmd.Flags().IntVar(&offset, "offset", 0, "number of records to skip")
	cmd.Flags().IntVar(&limit, "limit", 100, "maximum number of records")
	return cmd
}

func newCreateCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "create <table> <json>",
		Short: "Create a record from a JSON object",
		Example: `  pmstore create users '{"username":"ada","email":"ada@example.com","password":"s3cret","role":"user"}'
  pmstore create comments '{"content":"Approved","document_id":1,"created_by":1}'`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			entity, err := types.ParseEntity(args[0], []byte(args[1]))
			if err != nil {
				return err
			}
			return withStore(cmd, flags, func(e *env) error {
				tbl, err := e.store.GetTable(args[0])
				if err != nil {
					return err
				}
				if _, err := tbl.Create(entity); err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), entity)
			})
		},
	}
}

func newUpdateCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "update <table> <id> <json>",
		Short:   "Apply a partial update",
		Example: `  pmstore update tasks 3 '{"status":"completed","assigned_to":null}'`,
		Args:    cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[1])
			if err != nil {
				return err
			}
			patch, err := types.ParsePatch(args[0], []byte(args[2]))
			if err != nil {
				return err
			}
			return withStore(cmd, flags, func(e *env) error {
				tbl, err := e.store.GetTable(args[0])
				if err != nil {
					return err
				}
				row, err := tbl.Update(id, patch)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), row)
			})
		},
	}
}

func newDeleteCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <table> <id>",
		Short: "Delete a record under the configured delete policy",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[1])
			if err != nil {
				return err
			}
			return withStore(cmd, flags, func(e *env) error {
				tbl, err := e.store.GetTable(args[0])
				if err != nil {
					return err
				}
				if err := tbl.Delete(id); err != nil {
					return err
				}
				printf(cmd.OutOrStdout(), "Deleted %s %d\n", args[0], id)
				return nil
			})
		},
	}
}
