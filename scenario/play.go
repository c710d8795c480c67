package scenario

import (
	"log/slog"

	"github.com/pkg/errors"

	"github.com/cube2222/relvar/relvar"
)

type Printer interface {
	Print(source relvar.Source) error
}

// Play applies the steps in order. After every step the loop is drained, so
// print steps always see settled views.
func Play(env *Environment, steps []Step, printer Printer) error {
	for i := range steps {
		if err := playStep(env, &steps[i], printer); err != nil {
			return errors.Wrapf(err, "step %d (%s)", i, steps[i].Kind())
		}
		if _, err := env.Loop.Drain(); err != nil {
			return errors.Wrapf(err, "couldn't propagate step %d", i)
		}
	}
	return nil
}

func (env *Environment) base(name string) (*relvar.Relvar, error) {
	base, ok := env.Bases[name]
	if !ok {
		if _, ok := env.Views[name]; ok {
			return nil, errors.Errorf("%s is a view, only relvars may be mutated", name)
		}
		return nil, errors.Errorf("unknown relvar %s", name)
	}
	return base, nil
}

func playStep(env *Environment, step *Step, printer Printer) error {
	logger := env.Loop.Logger()

	switch step.Kind() {
	case "insert":
		base, err := env.base(step.Insert)
		if err != nil {
			return err
		}
		logger.Info("inserting rows", slog.String("relvar", base.Name()), slog.Int("rows", len(step.Rows)))
		_, err = base.Insert(rowsOf(step.Rows))
		return err

	case "update":
		base, err := env.base(step.Update)
		if err != nil {
			return err
		}
		logger.Info("updating rows", slog.String("relvar", base.Name()), slog.Int("rows", len(step.Rows)))
		_, err = base.Update(rowsOf(step.Keys), rowsOf(step.Rows))
		return err

	case "remove":
		base, err := env.base(step.Remove)
		if err != nil {
			return err
		}
		logger.Info("removing rows", slog.String("relvar", base.Name()), slog.Int("rows", len(step.Keys)))
		base.Remove(rowsOf(step.Keys))
		return nil

	case "print":
		for _, name := range step.Print {
			source, ok := env.Source(name)
			if !ok {
				return errors.Errorf("unknown relvar or view %s", name)
			}
			if err := printer.Print(source); err != nil {
				return errors.Wrapf(err, "couldn't print %s", name)
			}
		}
		return nil

	default:
		return errors.New("step has no action, expected one of insert, update, remove and print")
	}
}
