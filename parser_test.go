package confclass_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/confclass/confclass"
	"github.com/confclass/confclass/format"
)

type AlphaConfig struct {
	Label string `json:"label"`
}

type BetaConfig struct {
	Count int `json:"count"`
}

var (
	_ = confclass.Define[AlphaConfig]().
		Section("alpha").
		Default("Label", "alpha").
		MustRegister()
	_ = confclass.Define[BetaConfig]().
		Section("beta").
		Default("Count", 5).
		MustRegister()
)

func TestSeparateClassesJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	p, err := confclass.New(path, format.JSON(),
		confclass.Schemas(confclass.Of[AlphaConfig](), confclass.Of[BetaConfig]()),
		confclass.CreateMissing(),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	want := `{
  "alpha": {
    "label": "alpha"
  },
  "beta": {
    "count": 5
  }
}
`
	if string(data) != want {
		t.Fatalf("synthesized document mismatch:\ngot:\n%s\nwant:\n%s", data, want)
	}

	alpha, err := confclass.Get[AlphaConfig](p)
	if err != nil {
		t.Fatalf("Get[AlphaConfig]: %v", err)
	}
	if alpha.Label != "alpha" {
		t.Fatalf("alpha.Label = %q, want %q", alpha.Label, "alpha")
	}
	beta, err := confclass.Get[BetaConfig](p)
	if err != nil {
		t.Fatalf("Get[BetaConfig]: %v", err)
	}
	if beta.Count != 5 {
		t.Fatalf("beta.Count = %d, want 5", beta.Count)
	}
}

type PathsConfig struct {
	OutputDir string `json:"output_dir"`
}

type FlagsConfig struct {
	Retries int  `json:"retries"`
	Verbose bool `json:"verbose"`
}

type AppConfig struct {
	Name  string      `json:"name"`
	Paths PathsConfig `json:"paths"`
	Flags FlagsConfig `json:"flags"`
}

var (
	_ = confclass.Define[PathsConfig]().
		Default("OutputDir", "./out").
		MustRegister()
	_ = confclass.Define[FlagsConfig]().
		Default("Retries", 3).
		Default("Verbose", false).
		MustRegister()
	_ = confclass.Define[AppConfig]().
		Root().
		Default("Name", "demo").
		MustRegister()
)

func TestRootWithNestedTypes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	p, err := confclass.New(path, format.JSON(),
		confclass.Schemas(confclass.Of[AppConfig](), confclass.Of[PathsConfig](), confclass.Of[FlagsConfig]()),
		confclass.CreateMissing(),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	cfg, err := confclass.Get[AppConfig](p)
	if err != nil {
		t.Fatalf("Get[AppConfig]: %v", err)
	}
	if cfg.Name != "demo" {
		t.Fatalf("Name = %q, want %q", cfg.Name, "demo")
	}
	if cfg.Flags.Retries != 3 {
		t.Fatalf("Flags.Retries = %d, want 3", cfg.Flags.Retries)
	}
	if cfg.Flags.Verbose {
		t.Fatalf("Flags.Verbose = true, want false")
	}
	if cfg.Paths.OutputDir != "./out" {
		t.Fatalf("Paths.OutputDir = %q, want %q", cfg.Paths.OutputDir, "./out")
	}
}

type MainConfig struct {
	Title   string `json:"title"`
	Enabled bool   `json:"enabled"`
}

type ExtraConfig struct {
	Level int `json:"level"`
}

var (
	_ = confclass.Define[MainConfig]().
		Root().
		Default("Title", "main").
		Default("Enabled", true).
		MustRegister()
	_ = confclass.Define[ExtraConfig]().
		Section("extra").
		Default("Level", 2).
		MustRegister()
)

func TestRootWithExtraSectionTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	p, err := confclass.New(path, format.TOML(),
		confclass.Schemas(confclass.Of[MainConfig](), confclass.Of[ExtraConfig]()),
		confclass.CreateMissing(),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	mainCfg, err := confclass.Get[MainConfig](p)
	if err != nil {
		t.Fatalf("Get[MainConfig]: %v", err)
	}
	extra, err := confclass.Get[ExtraConfig](p)
	if err != nil {
		t.Fatalf("Get[ExtraConfig]: %v", err)
	}
	if mainCfg.Title != "main" || !mainCfg.Enabled {
		t.Fatalf("MainConfig = %+v, want title=main enabled=true", mainCfg)
	}
	if extra.Level != 2 {
		t.Fatalf("extra.Level = %d, want 2", extra.Level)
	}
}

type NamedNested struct {
	Value string `json:"value"`
}

type ParentNamed struct {
	Nested NamedNested `json:"nested"`
}

var (
	_ = confclass.Define[NamedNested]().
		Section("nested").
		Default("Value", "value").
		MustRegister()
	_ = confclass.Define[ParentNamed]().
		Root().
		MustRegister()
)

func TestNestedNameCollisionAllowsLookup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	p, err := confclass.New(path, format.JSON(),
		confclass.Schemas(confclass.Of[ParentNamed](), confclass.Of[NamedNested]()),
		confclass.CreateMissing(),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	// The parent's field key matches the nested schema's section name, so
	// the synthesized sub-mapping doubles as the nested schema's section.
	nested, err := confclass.Get[NamedNested](p)
	if err != nil {
		t.Fatalf("Get[NamedNested]: %v", err)
	}
	if nested.Value != "value" {
		t.Fatalf("nested.Value = %q, want %q", nested.Value, "value")
	}
}

type DefaultNested struct {
	Value string `json:"value"`
}

type ParentDefault struct {
	Nested DefaultNested `json:"nested"`
}

var (
	_ = confclass.Define[DefaultNested]().
		Default("Value", "value").
		MustRegister()
	_ = confclass.Define[ParentDefault]().
		Root().
		MustRegister()
)

func TestNestedWithoutMatchingSectionFailsLookup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	p, err := confclass.New(path, format.JSON(),
		confclass.Schemas(confclass.Of[ParentDefault](), confclass.Of[DefaultNested]()),
		confclass.CreateMissing(),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	// Synthesized under the parent's field key "nested", not under the
	// schema's own section name, so a direct lookup has no section.
	_, err = confclass.Get[DefaultNested](p)
	var mse *confclass.MissingSectionError
	if !errors.As(err, &mse) {
		t.Fatalf("Get[DefaultNested] err = %v, want MissingSectionError", err)
	}
	if mse.Section != "DefaultNested" {
		t.Fatalf("missing section = %q, want %q", mse.Section, "DefaultNested")
	}

	// The parent still resolves the nested config structurally.
	parent, err := confclass.Get[ParentDefault](p)
	if err != nil {
		t.Fatalf("Get[ParentDefault]: %v", err)
	}
	if parent.Nested.Value != "value" {
		t.Fatalf("parent.Nested.Value = %q, want %q", parent.Nested.Value, "value")
	}
}

type RequiredConfig struct {
	Count *int    `json:"count"`
	Label *string `json:"label"`
}

var _ = confclass.Define[RequiredConfig]().
	Root().
	MustRegister()

func TestMissingDefaultsWrittenAsNull(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	p, err := confclass.New(path, format.JSON(),
		confclass.Schemas(confclass.Of[RequiredConfig]()),
		confclass.CreateMissing(),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	want := `{
  "count": null,
  "label": null
}
`
	if string(data) != want {
		t.Fatalf("synthesized document mismatch:\ngot:\n%s\nwant:\n%s", data, want)
	}

	cfg, err := confclass.Get[RequiredConfig](p)
	if err != nil {
		t.Fatalf("Get[RequiredConfig]: %v", err)
	}
	if cfg.Count != nil || cfg.Label != nil {
		t.Fatalf("RequiredConfig = %+v, want nil fields", cfg)
	}
}

type RootA struct{ V int }

type RootB struct{ V int }

var (
	_ = confclass.Define[RootA]().Root().MustRegister()
	_ = confclass.Define[RootB]().Root().MustRegister()
)

func TestMultipleRootConfigsRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	_, err := confclass.New(path, format.JSON(),
		confclass.Schemas(confclass.Of[RootA](), confclass.Of[RootB]()),
		confclass.CreateMissing(),
	)
	var mre *confclass.MultipleTopLevelConfigError
	if !errors.As(err, &mre) {
		t.Fatalf("New err = %v, want MultipleTopLevelConfigError", err)
	}
	if len(mre.Names) != 2 || mre.Names[0] != "RootA" || mre.Names[1] != "RootB" {
		t.Fatalf("offenders = %v, want [RootA RootB]", mre.Names)
	}
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Fatalf("validation failure must not persist a default document")
	}
}

type PlainConfig struct{ V int }

func TestUnregisteredTypeRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	_, err := confclass.New(path, format.JSON(),
		confclass.Schemas(confclass.Of[PlainConfig]()),
		confclass.CreateMissing(),
	)
	var ice *confclass.InvalidConfigClassError
	if !errors.As(err, &ice) {
		t.Fatalf("New err = %v, want InvalidConfigClassError", err)
	}
	if len(ice.Types) != 1 {
		t.Fatalf("offenders = %v, want one entry", ice.Types)
	}
}

func TestMissingFileWithoutCreate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	_, err := confclass.New(path, format.JSON(),
		confclass.Schemas(confclass.Of[AlphaConfig]()),
	)
	if !errors.Is(err, confclass.ErrFileNotFound) {
		t.Fatalf("New err = %v, want ErrFileNotFound", err)
	}
}

type StrictConfig struct {
	Count int `json:"count"`
}

var _ = confclass.Define[StrictConfig]().
	Section("strict").
	MustRegister()

func TestMissingKeyFailsParse(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"strict": {}}`), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	p, err := confclass.New(path, format.JSON(),
		confclass.Schemas(confclass.Of[StrictConfig]()),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, err = confclass.Get[StrictConfig](p)
	var mke *confclass.MissingKeyError
	if !errors.As(err, &mke) {
		t.Fatalf("Get err = %v, want MissingKeyError", err)
	}
	if mke.Schema != "StrictConfig" || mke.Key != "count" {
		t.Fatalf("MissingKeyError = %+v, want StrictConfig/count", mke)
	}
}

func TestGetUnknownTypeFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	p, err := confclass.New(path, format.JSON(),
		confclass.Schemas(confclass.Of[AlphaConfig]()),
		confclass.CreateMissing(),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, err = confclass.Get[BetaConfig](p)
	var ure *confclass.UnregisteredSchemaError
	if !errors.As(err, &ure) {
		t.Fatalf("Get err = %v, want UnregisteredSchemaError", err)
	}
}

func TestAddExtendsParser(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	body := `{"alpha": {"label": "x"}, "beta": {"count": 9}}`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	p, err := confclass.New(path, format.JSON(),
		confclass.Schemas(confclass.Of[AlphaConfig]()),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := confclass.Get[BetaConfig](p); err == nil {
		t.Fatalf("Get[BetaConfig] before Add should fail")
	}
	if err := p.Add(confclass.Of[BetaConfig]()); err != nil {
		t.Fatalf("Add: %v", err)
	}
	beta, err := confclass.Get[BetaConfig](p)
	if err != nil {
		t.Fatalf("Get[BetaConfig] after Add: %v", err)
	}
	if beta.Count != 9 {
		t.Fatalf("beta.Count = %d, want 9", beta.Count)
	}
}

func TestEmptyFileIsEmptyDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(""), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	p, err := confclass.New(path, format.JSON(),
		confclass.Schemas(confclass.Of[AlphaConfig]()),
		confclass.CreateMissing(),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	// Empty is distinct from absent: no default synthesis happens, so the
	// alpha section is simply missing.
	_, err = confclass.Get[AlphaConfig](p)
	var mse *confclass.MissingSectionError
	if !errors.As(err, &mse) {
		t.Fatalf("Get err = %v, want MissingSectionError", err)
	}
}
