package manifest

import (
	_ "embed"
	"fmt"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
)

//go:embed schema.cue
var schemaSource string

var (
	schemaOnce sync.Once
	schemaCtx  *cue.Context
	schemaDef  cue.Value
	schemaErr  error
)

func loadSchema() (*cue.Context, cue.Value, error) {
	schemaOnce.Do(func() {
		schemaCtx = cuecontext.New()
		v := schemaCtx.CompileString(schemaSource, cue.Filename("schema.cue"))
		if err := v.Err(); err != nil {
			schemaErr = fmt.Errorf("compiling manifest schema: %w", err)
			return
		}
		schemaDef = v.LookupPath(cue.ParsePath("#Config"))
		if err := schemaDef.Err(); err != nil {
			schemaErr = fmt.Errorf("manifest schema: %w", err)
		}
	})
	return schemaCtx, schemaDef, schemaErr
}

// Validate checks the manifest against the embedded CUE schema.
func (m *Manifest) Validate() error {
	ctx, def, err := loadSchema()
	if err != nil {
		return err
	}
	v := ctx.Encode(m.document())
	if err := v.Err(); err != nil {
		return fmt.Errorf("encoding manifest: %w", err)
	}
	if err := def.Unify(v).Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("invalid manifest: %s", errors.Details(err, nil))
	}
	return nil
}

// document renders the manifest with its TOML key names.
func (m *Manifest) document() map[string]any {
	return map[string]any{
		"project": map[string]any{
			"name": m.Project.Name,
		},
		"cache": map[string]any{
			"max-entries":   m.Cache.MaxEntries,
			"collect-stats": m.Cache.CollectStats,
		},
		"access": map[string]any{
			"warn-partial-match-dollar": m.Access.WarnPartialMatchDollar,
		},
		"log": map[string]any{
			"verbosity": m.Log.Verbosity,
			"file":      m.Log.File,
		},
		"profile": map[string]any{
			"database": m.Profile.Database,
		},
	}
}
