package hostsim

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/webviewkit/bridge/catalog"
)

// validateProps checks a call's props against the catalogue schema, when
// one is declared. The sending side never validates; the host does.
func validateProps(m catalog.Method, props json.RawMessage) error {
	if m.PropsSchema == nil {
		return nil
	}
	if len(props) == 0 {
		if len(m.PropsSchema.Required) > 0 {
			return errors.New("missing required props")
		}
		return nil
	}
	var value any
	if err := json.Unmarshal(props, &value); err != nil {
		return fmt.Errorf("props is not valid JSON: %w", err)
	}
	if err := m.PropsSchema.VisitJSON(value); err != nil {
		return fmt.Errorf("invalid props: %w", err)
	}
	return nil
}
