package config

import (
	"time"
)

const DefaultConfigFile = "./corocheck.toml"

type Config struct {
	Version       int           `toml:"version"`
	Analysis      Analysis      `toml:"analysis"`
	Environment   Environment   `toml:"environment"`
	Output        Output        `toml:"output"`
	Exclude       Exclude       `toml:"exclude"`
	Watch         Watch         `toml:"watch"`
	History       History       `toml:"history"`
	Observability Observability `toml:"observability"`
}

type Analysis struct {
	// CoroutineMarker is the dotted decorator name that marks a legacy coroutine.
	CoroutineMarker     string `toml:"coroutine_marker"`
	AwaitIsDelegation   bool   `toml:"await_is_delegation"`
	AsyncDefIsCoroutine bool   `toml:"async_def_is_coroutine"`
	FailOnMismatch      bool   `toml:"fail_on_mismatch"`
}

type Environment struct {
	ExecuteImports  *bool    `toml:"execute_imports"`
	Python          string   `toml:"python"`
	CacheSize       int      `toml:"cache_size"`
	KnownCoroutines []string `toml:"known_coroutines"`
}

type Output struct {
	Format string `toml:"format"`
	Color  *bool  `toml:"color"`
}

type Exclude struct {
	Dirs  []string `toml:"dirs"`
	Files []string `toml:"files"`
}

type Watch struct {
	Debounce time.Duration `toml:"debounce"`
	Rate     float64       `toml:"rate"`
	Burst    int           `toml:"burst"`
}

type History struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
	Project string `toml:"project"`
}

type Observability struct {
	MetricsAddr  string `toml:"metrics_addr"`
	OTLPEndpoint string `toml:"otlp_endpoint"`
	ServiceName  string `toml:"service_name"`
}

// DefaultKnownCoroutines lists the asyncio functions defined with "async def".
// They back the static environment when import execution is disabled.
var DefaultKnownCoroutines = []string{
	"asyncio.sleep",
	"asyncio.wait",
	"asyncio.wait_for",
	"asyncio.open_connection",
	"asyncio.start_server",
	"asyncio.open_unix_connection",
	"asyncio.start_unix_server",
	"asyncio.create_subprocess_exec",
	"asyncio.create_subprocess_shell",
	"asyncio.to_thread",
	"asyncio.staggered.staggered_race",
	"asyncio.streams.open_connection",
	"asyncio.streams.start_server",
	"asyncio.tasks.sleep",
	"asyncio.tasks.wait",
	"asyncio.tasks.wait_for",
}

func DefaultConfig() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func (e Environment) ImportsEnabled() bool {
	return e.ExecuteImports == nil || *e.ExecuteImports
}

func (o Output) ColorEnabled() bool {
	return o.Color == nil || *o.Color
}
