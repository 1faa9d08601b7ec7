package sink

import "github.com/diagramtool/diagramtool/pkg/diagram"

// RenderJSON exports the layout as a pretty-printed JSON document. The
// output is the layout boundary format: [diagram.UnmarshalLayout] reads it
// back, so a layout can be cached and rendered again in another format.
func RenderJSON(l *diagram.Layout) ([]byte, error) {
	data, err := diagram.MarshalLayout(l)
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
