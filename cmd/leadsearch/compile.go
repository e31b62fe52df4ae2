package main

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"github.com/johnwards/leadsearch/internal/converter"
	"github.com/johnwards/leadsearch/internal/domain"
)

func compileCmd() *cobra.Command {
	var (
		entityName string
		target     string
	)
	cmd := &cobra.Command{
		Use:   "compile key=value...",
		Short: "Print the search request compiled from list parameters",
		Example: `  leadsearch compile --entity contacts titles=CTO exclude_departments=sales
  leadsearch compile --entity companies --target where employees_min=50`,
		RunE: func(cmd *cobra.Command, args []string) error {
			entity, err := domain.ParseEntity(entityName)
			if err != nil {
				return err
			}
			values := url.Values{}
			for _, arg := range args {
				key, value, ok := strings.Cut(arg, "=")
				if !ok || key == "" {
					return fmt.Errorf("argument %q is not key=value", arg)
				}
				values.Add(key, value)
			}
			params, err := converter.ParamsFromQuery(values)
			if err != nil {
				return err
			}

			conv := converter.New(converter.Config{})
			var body any
			switch target {
			case converter.TargetVQL:
				body, err = conv.ToQuery(entity, params)
			case converter.TargetWhere:
				body, err = conv.ToWhere(entity, params)
			default:
				return fmt.Errorf("unknown target %q", target)
			}
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(body)
		},
	}
	cmd.Flags().StringVarP(&entityName, "entity", "e", string(domain.Contacts), "entity to compile for (contacts or companies)")
	cmd.Flags().StringVarP(&target, "target", "t", converter.TargetVQL, "compilation target (vql or where)")
	return cmd
}
