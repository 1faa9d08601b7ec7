package nodelink_test

import (
	"fmt"

	"github.com/diagramtool/diagramtool/pkg/diagram"
	"github.com/diagramtool/diagramtool/pkg/render/nodelink"
)

func ExampleToDOT() {
	l := &diagram.Layout{
		Entities: []diagram.Entity{
			{Name: "Shape", Kind: diagram.KindClass},
			{Name: "Circle", Kind: diagram.KindClass, Parents: []string{"Shape"}},
		},
		Relations: []diagram.Relation{{Source: "Circle", Target: "Shape", Kind: diagram.Inheritance}},
	}
	fmt.Print(nodelink.ToDOT(l, nodelink.Options{NamesOnly: true}))
	// Output:
	// digraph G {
	//   rankdir=BT;
	//   bgcolor="transparent";
	//   node [shape=record, style=filled, fillcolor=white, fontname="monospace", fontsize=16];
	//   ranksep=0.6;
	//   nodesep=0.4;
	//
	//   "Shape" [label="{Shape}"];
	//   "Circle" [label="{Circle}"];
	//
	//   "Circle" -> "Shape" [arrowhead=onormal];
	// }
}
