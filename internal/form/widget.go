package form

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strings"

	"go-live-preview/internal/model"
	"go-live-preview/internal/storage"
)

// WidgetState is the state of one inline sub-entity widget: the field it is
// bound to and the entities currently attached to it.
type WidgetState struct {
	InstanceName string
	Entities     []*model.Entity
}

// ief[<widget>][instance] and ief[<widget>][entities][]
var widgetKey = regexp.MustCompile(`^ief\[([^\]]+)\]\[(instance|entities)\](\[\])?$`)

// ParseWidgets reads inline widget state from submitted values, loading the
// referenced entities through storage. Widgets without an instance name are dropped.
func ParseWidgets(ctx context.Context, values url.Values, entities storage.EntityStorage) (map[string]*WidgetState, error) {
	instances := map[string]string{}
	ids := map[string][]int64{}

	for key, vals := range values {
		m := widgetKey.FindStringSubmatch(key)
		if m == nil {
			continue
		}
		widget := m[1]
		switch m[2] {
		case "instance":
			if len(vals) > 0 {
				instances[widget] = strings.TrimSpace(vals[0])
			}
		case "entities":
			for _, raw := range vals {
				if strings.TrimSpace(raw) == "" {
					continue
				}
				id, err := storage.ParseEntityID(strings.TrimSpace(raw))
				if err != nil {
					return nil, fmt.Errorf("widget %s: %w", widget, err)
				}
				ids[widget] = append(ids[widget], id)
			}
		}
	}

	widgets := make(map[string]*WidgetState, len(instances))
	names := make([]string, 0, len(instances))
	for name := range instances {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		ws := &WidgetState{InstanceName: instances[name]}
		if ws.InstanceName == "" {
			continue
		}
		if len(ids[name]) > 0 {
			loaded, err := entities.LoadMultiple(ctx, ids[name])
			if err != nil {
				return nil, fmt.Errorf("failed to load entities for widget %s: %w", name, err)
			}
			ws.Entities = loaded
		}
		widgets[name] = ws
	}
	return widgets, nil
}

// WidgetEntitiesFor returns the entities of the first widget bound to field
// that has any, in widget name order.
func WidgetEntitiesFor(widgets map[string]*WidgetState, field string) []*model.Entity {
	names := make([]string, 0, len(widgets))
	for name := range widgets {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		ws := widgets[name]
		if ws != nil && ws.InstanceName == field && len(ws.Entities) > 0 {
			return ws.Entities
		}
	}
	return nil
}

// WidgetSubmitted reports whether any widget bound to field was submitted,
// with or without entities.
func WidgetSubmitted(widgets map[string]*WidgetState, field string) bool {
	for _, ws := range widgets {
		if ws != nil && ws.InstanceName == field {
			return true
		}
	}
	return false
}
