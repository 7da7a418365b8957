package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/stackcanvas/pkg/editor"
	errs "github.com/matzehuels/stackcanvas/pkg/errors"
	"github.com/matzehuels/stackcanvas/pkg/geom"
	"github.com/matzehuels/stackcanvas/pkg/history"
	"github.com/matzehuels/stackcanvas/pkg/resources"
	"github.com/matzehuels/stackcanvas/pkg/stack"
)

// =============================================================================
// Script
// =============================================================================

// Script is a recorded editing session:
//
//	steps:
//	  - down: {node: api, x: 10, y: 10}
//	  - move: {x: 200, y: 100}
//	  - up: {x: 460, y: 160}
//	  - wait: 500ms
//	  - undo: true
//	  - add: {name: Redis, category: database, x: 0, y: 400}
//	  - container: {template: kubernetes, x: 900, y: 100}
type Script struct {
	Viewport *scriptViewport `yaml:"viewport"`
	Steps    []Step          `yaml:"steps"`
}

type scriptViewport struct {
	Origin geom.Rect  `yaml:"origin"`
	Matrix [6]float64 `yaml:"matrix"`
}

// Step is one scripted action. Exactly one field is set.
type Step struct {
	Down      *scriptPointer   `yaml:"down,omitempty"`
	Move      *scriptPointer   `yaml:"move,omitempty"`
	Up        *scriptPointer   `yaml:"up,omitempty"`
	Cancel    bool             `yaml:"cancel,omitempty"`
	Wait      string           `yaml:"wait,omitempty"`
	Undo      bool             `yaml:"undo,omitempty"`
	Redo      bool             `yaml:"redo,omitempty"`
	Add       *scriptComponent `yaml:"add,omitempty"`
	Container *scriptContainer `yaml:"container,omitempty"`
}

type scriptPointer struct {
	Node string  `yaml:"node"`
	X    float64 `yaml:"x"`
	Y    float64 `yaml:"y"`
}

type scriptComponent struct {
	ID       string         `yaml:"id"`
	Name     string         `yaml:"name"`
	Category stack.Category `yaml:"category"`
	CPU      string         `yaml:"cpu"`
	Memory   string         `yaml:"memory"`
	X        float64        `yaml:"x"`
	Y        float64        `yaml:"y"`
}

type scriptContainer struct {
	Template string  `yaml:"template"`
	X        float64 `yaml:"x"`
	Y        float64 `yaml:"y"`
}

// ParseScript decodes a YAML script and checks that every step sets exactly
// one action.
func ParseScript(r io.Reader) (Script, error) {
	var s Script
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return Script{}, errs.Wrap(errs.ErrCodeInvalidFormat, err, "parse script")
	}
	for i, st := range s.Steps {
		if n := st.actions(); n != 1 {
			return Script{}, errs.New(errs.ErrCodeInvalidFormat, "step %d sets %d actions, want 1", i+1, n)
		}
		if st.Wait != "" {
			if _, err := time.ParseDuration(st.Wait); err != nil {
				return Script{}, errs.Wrap(errs.ErrCodeInvalidFormat, err, "step %d", i+1)
			}
		}
	}
	return s, nil
}

func (st Step) actions() int {
	n := 0
	for _, set := range []bool{
		st.Down != nil, st.Move != nil, st.Up != nil, st.Cancel,
		st.Wait != "", st.Undo, st.Redo, st.Add != nil, st.Container != nil,
	} {
		if set {
			n++
		}
	}
	return n
}

// StepResult reports what one step did.
type StepResult struct {
	Index  int
	Action string
	Drop   *editor.DropResult
	Moved  bool
	ID     string
}

// Run executes the script against ed, advancing sched for waits. It stops at
// the first failing step.
func (s Script) Run(ed *editor.Editor, sched *history.VirtualScheduler, report func(StepResult)) error {
	if s.Viewport != nil {
		ed.SetViewport(editor.Viewport{
			Origin:    s.Viewport.Origin,
			Transform: geom.TransformFromMatrix(s.Viewport.Matrix),
		})
	}

	for i, st := range s.Steps {
		res := StepResult{Index: i + 1}
		var err error
		switch {
		case st.Down != nil:
			res.Action = "down"
			_, err = ed.Dispatch(editor.PointerDown{NodeID: st.Down.Node, X: st.Down.X, Y: st.Down.Y})
		case st.Move != nil:
			res.Action = "move"
			_, err = ed.Dispatch(editor.PointerMove{X: st.Move.X, Y: st.Move.Y})
		case st.Up != nil:
			res.Action = "up"
			res.Drop, err = ed.Dispatch(editor.PointerUp{X: st.Up.X, Y: st.Up.Y})
		case st.Cancel:
			res.Action = "cancel"
			res.Drop, err = ed.Dispatch(editor.Cancel{})
		case st.Wait != "":
			res.Action = "wait"
			d, _ := time.ParseDuration(st.Wait)
			sched.Advance(d)
		case st.Undo:
			res.Action = "undo"
			res.Moved = ed.Undo()
		case st.Redo:
			res.Action = "redo"
			res.Moved = ed.Redo()
		case st.Add != nil:
			res.Action = "add"
			res.ID, err = ed.AddComponent(st.Add.component())
		case st.Container != nil:
			res.Action = "container"
			res.ID, err = ed.AddContainer(st.Container.Template, geom.Point{X: st.Container.X, Y: st.Container.Y})
		}
		if err != nil {
			return fmt.Errorf("step %d (%s): %w", i+1, res.Action, err)
		}
		if report != nil {
			report(res)
		}
	}
	return nil
}

func (c scriptComponent) component() stack.Component {
	comp := stack.Component{
		ID:       c.ID,
		Name:     c.Name,
		Category: c.Category,
		Bounds:   geom.Rect{X: c.X, Y: c.Y},
	}
	if c.CPU != "" || c.Memory != "" {
		comp.Resources = &resources.Requirements{CPU: c.CPU, Memory: c.Memory}
	}
	return comp
}

// =============================================================================
// Command
// =============================================================================

// simulateCommand replays a script against a stack on a virtual clock, so
// debounced history behaves exactly as it would for a user at that pace.
func (c *CLI) simulateCommand() *cobra.Command {
	var (
		output string
		save   bool
	)

	cmd := &cobra.Command{
		Use:   "simulate [file|id] [script.yaml]",
		Short: "Replay a scripted drag session",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			doc, err := c.loadDocument(ctx, args[0])
			if err != nil {
				return err
			}

			f, err := os.Open(args[1])
			if err != nil {
				return fmt.Errorf("open script: %w", err)
			}
			script, err := ParseScript(f)
			f.Close()
			if err != nil {
				return err
			}

			reg, err := c.registry()
			if err != nil {
				return err
			}
			sched := history.NewVirtualScheduler(time.Now())
			ed, err := editor.New(doc.State,
				editor.WithScheduler(sched),
				editor.WithDebounce(c.Config.Editor.Debounce.Duration),
				editor.WithHistorySize(c.Config.Editor.History),
				editor.WithTemplates(reg),
				editor.WithLogger(c.Logger),
			)
			if err != nil {
				return err
			}

			prog := newProgress(c.Logger)
			err = script.Run(ed, sched, printStep)
			ed.Flush()
			prog.done("simulated", "stack", doc.ID, "steps", len(script.Steps))
			if err != nil {
				return err
			}
			printStats(
				fmt.Sprintf("%d steps", len(script.Steps)),
				fmt.Sprintf("%d snapshots", ed.HistoryLen()),
			)

			doc.State = ed.State()
			switch {
			case output != "":
				if err := stack.WriteFile(doc, output); err != nil {
					return err
				}
				printFile(output)
			case save:
				st, err := c.openStore(ctx)
				if err != nil {
					return err
				}
				defer st.Close()
				if err := st.Put(ctx, doc); err != nil {
					return err
				}
				printSuccess("Saved %s", doc.ID)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write the resulting stack to a JSON file")
	cmd.Flags().BoolVar(&save, "save", false, "save the resulting stack to the store")

	return cmd
}

func printStep(r StepResult) {
	switch {
	case r.Drop != nil:
		msg := fmt.Sprintf("%d. %s %s: %s", r.Index, r.Action, r.Drop.NodeID, r.Drop.Outcome)
		if r.Drop.Target != "" {
			msg += " " + iconArrow + " " + r.Drop.Target
		}
		if r.Drop.Rejected() {
			printWarning("%s (%s)", msg, r.Drop.Hint)
		} else {
			printSuccess("%s", msg)
		}
		printViolations(r.Drop.Target, r.Drop.Violations)
	case r.Action == "undo" || r.Action == "redo":
		if r.Moved {
			printInfo("%d. %s", r.Index, r.Action)
		} else {
			printDetail("%d. %s (nothing to %s)", r.Index, r.Action, r.Action)
		}
	case r.ID != "":
		printInfo("%d. %s %s", r.Index, r.Action, r.ID)
	}
}
