package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/goccy/go-json"
	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/yangreactor/internal/ctxlog"
	"github.com/specialistvlad/yangreactor/internal/effective"
	"github.com/specialistvlad/yangreactor/internal/yangerr"
)

// Resolve loads the configured sources and resolves them into an effective
// model. Resolution errors are returned as a yangerr.List.
func (a *App) Resolve(ctx context.Context) (*effective.SchemaContext, error) {
	ctx, logger := ctxlog.With(ctxlog.WithLogger(ctx, a.logger), "run", a.runs.Add(1))
	nodes, err := a.Load(ctx)
	if err != nil {
		a.setReady(false)
		return nil, err
	}

	logger.Debug("Resolving statement trees.", "roots", len(nodes))
	sc, err := a.reactor.Resolve(ctx, nodes)
	if err != nil {
		a.setReady(false)
		return nil, err
	}
	a.setReady(true)
	logger.Info("Model resolved.", "modules", len(sc.Modules()), "fingerprint", fmt.Sprintf("%016x", sc.Fingerprint()))
	return sc, nil
}

// Run resolves the sources once and writes the model to the output writer.
func (a *App) Run(ctx context.Context) error {
	a.logger.Debug("App.Run method started.")
	sc, err := a.Resolve(ctx)
	if err != nil {
		return err
	}
	if err := a.WriteModel(a.outW, sc); err != nil {
		return fmt.Errorf("failed to write model: %w", err)
	}
	a.logger.Debug("App.Run method finished.")
	return nil
}

// WriteModel renders sc in the configured format.
func (a *App) WriteModel(w io.Writer, sc *effective.SchemaContext) error {
	if a.config.Format == FormatJSON {
		data, err := json.Marshal(sc)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	}
	return sc.Dump(w)
}

// WriteDiagnostics renders err with source snippets when it carries source
// positions, and as a plain message otherwise.
func (a *App) WriteDiagnostics(w io.Writer, err error, width uint, color bool) error {
	var diags hcl.Diagnostics
	var list yangerr.List
	switch {
	case errors.As(err, &list):
		diags = list.Diagnostics()
	case errors.As(err, &diags):
	default:
		_, werr := fmt.Fprintln(w, err)
		return werr
	}
	return hcl.NewDiagnosticTextWriter(w, a.Files(), width, color).WriteDiagnostics(diags)
}
