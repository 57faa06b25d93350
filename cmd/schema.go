package cmd

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/invopop/jsonschema"
	"github.com/spf13/cobra"

	"github.com/KaramelBytes/agroinsight-cli/internal/analysis"
	"github.com/KaramelBytes/agroinsight-cli/internal/diagnostic"
	"github.com/KaramelBytes/agroinsight-cli/internal/project"
	"github.com/KaramelBytes/agroinsight-cli/internal/service"
	"github.com/KaramelBytes/agroinsight-cli/internal/zootech"
)

var schemaCmd = &cobra.Command{
	Use:       "schema <analysis|diagnostic>",
	Short:     "Print the JSON Schema of stored analyses or diagnostics",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"analysis", "diagnostic"},
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := outputSchema(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(b))
		return nil
	},
}

func newReflector() *jsonschema.Reflector {
	cell := reflect.TypeOf(analysis.Cell{})
	status := reflect.TypeOf(diagnostic.Status(""))
	indicator := reflect.TypeOf(zootech.Indicator(""))
	return &jsonschema.Reflector{
		Mapper: func(t reflect.Type) *jsonschema.Schema {
			switch t {
			case cell:
				return &jsonschema.Schema{
					Description: "cell value; null when missing",
					OneOf: []*jsonschema.Schema{
						{Type: "number"}, {Type: "string"}, {Type: "boolean"}, {Type: "null"},
					},
				}
			case status:
				enum := make([]any, len(diagnostic.Statuses))
				for i, s := range diagnostic.Statuses {
					enum[i] = string(s)
				}
				return &jsonschema.Schema{Type: "string", Enum: enum}
			case indicator:
				enum := []any{string(zootech.None)}
				for _, ind := range zootech.Indicators {
					enum = append(enum, string(ind))
				}
				return &jsonschema.Schema{Type: "string", Enum: enum}
			}
			return nil
		},
	}
}

func outputSchema(kind string) ([]byte, error) {
	r := newReflector()
	var s *jsonschema.Schema
	switch kind {
	case "analysis":
		s = r.Reflect(&project.DatasetData{})
	case "diagnostic":
		s = r.Reflect(&service.DiagnosticResponse{})
	default:
		return nil, fmt.Errorf("unknown schema %q (use analysis or diagnostic)", kind)
	}
	return json.MarshalIndent(s, "", "  ")
}

func init() {
	rootCmd.AddCommand(schemaCmd)
}
