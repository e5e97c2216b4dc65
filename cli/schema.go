package cli

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
	"github.com/urfave/cli/v2"

	"github.com/legplan/contactplan/scene"
)

// SchemaAction prints the JSON schema of scene files.
func SchemaAction(c *cli.Context) error {
	data, err := json.MarshalIndent(jsonschema.Reflect(&scene.Config{}), "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.App.Writer, string(data))
	return err
}
