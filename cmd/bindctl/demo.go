package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ygrebnov/bind"
	"github.com/ygrebnov/bind/host"
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Bind sample classes and walk an object through its lifecycle",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runDemo(cmd.OutOrStdout())
	},
}

type phase struct {
	name string
	live int64
	objs int
}

//nolint:funlen // one linear scenario
func runDemo(w io.Writer) error {
	rt := host.New(host.WithName("demo"), host.WithLogger(logger.Named("host")))
	defer rt.Dispose()

	var count counter
	shapes, err := bind.NewClass[shape, *shape](rt, bind.WithName[shape]("Shape"))
	if err != nil {
		return err
	}
	circles, err := bind.NewClass[circle, *circle](rt, bind.WithName[circle]("Circle"))
	if err != nil {
		return err
	}
	for _, err := range []error{
		shapes.Field("name", "Name"),
		shapes.Method("describe", (*shape).Describe),
		bind.Inherit[shape](circles),
		circles.Constructor(func(name string, r float64) *circle { return newCircle(name, r, &count) }),
		circles.Field("radius", "Radius"),
		circles.Property("area", (*circle).Area),
		circles.Constant("sides", 0),
	} {
		if err != nil {
			return err
		}
	}
	bind.NewModule(rt).SetClass("Shape", shapes).SetClass("Circle", circles).Install("geometry")

	var phases []phase
	record := func(name string) {
		phases = append(phases, phase{name: name, live: count.live(), objs: circles.Count()})
	}

	for i := 0; i < 10; i++ {
		if _, err := circles.New(fmt.Sprintf("c%d", i), float64(i)); err != nil {
			return err
		}
	}
	record("constructed 10 transient circles")

	pinned := newCircle("pinned", 2, &count)
	obj, err := circles.ReferenceExternal(pinned)
	if err != nil {
		return err
	}
	area, err := rt.Get(obj, "area")
	if err != nil {
		return err
	}
	desc, err := rt.Call(obj, "describe")
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%s has area %v\n", desc, area)
	record("referenced one external circle")

	rt.Collect()
	record("collected")

	if err := circles.UnreferenceExternal(pinned); err != nil {
		return err
	}
	rt.Collect()
	record("unreferenced and collected")

	headerColor.Fprintln(w, "phase                              live  wrapped")
	for _, p := range phases {
		fmt.Fprintf(w, "%-34s %5d %8d\n", p.name, p.live, p.objs)
	}
	if count.live() != 0 {
		return fmt.Errorf("%d circles leaked", count.live())
	}
	okColor.Fprintln(w, "all circles destroyed")
	return nil
}
