package confloader

import (
	"os"
	"path/filepath"
	"testing"
)

type testConfig struct {
	Server struct {
		Redis struct {
			Host string `koanf:"host"`
			Port int    `koanf:"port"`
		} `koanf:"redis"`
		HTTP struct {
			Addr    string `koanf:"addr"`
			Enabled bool   `koanf:"enabled"`
		} `koanf:"http"`
	} `koanf:"server"`
	Replication struct {
		ReplicaOf string `koanf:"replicaof"`
	} `koanf:"replication"`
}

const testYAML = `
server:
  redis:
    host: "0.0.0.0"
    port: 6380
  http:
    addr: "127.0.0.1:9121"
    enabled: true
replication:
  replicaof: "localhost 6379"
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "replikv.yaml")
	writeFile(t, path, content)
	return path
}

func TestNewLoader_Defaults(t *testing.T) {
	l := NewLoader()

	if l.envPrefix != DefaultEnvPrefix {
		t.Errorf("envPrefix = %q, want %q", l.envPrefix, DefaultEnvPrefix)
	}
	if l.dotEnvPath != DefaultDotEnvFile {
		t.Errorf("dotEnvPath = %q, want %q", l.dotEnvPath, DefaultDotEnvFile)
	}
}

func TestLoader_LoadFile(t *testing.T) {
	l := NewLoader()
	if err := l.LoadFile(writeConfig(t, testYAML)); err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}

	if got := l.GetInt("server.redis.port"); got != 6380 {
		t.Errorf("server.redis.port = %d, want 6380", got)
	}
	if !l.GetBool("server.http.enabled") {
		t.Error("server.http.enabled should be true")
	}
	if got := l.GetString("replication.replicaof"); got != "localhost 6379" {
		t.Errorf("replication.replicaof = %q", got)
	}
}

func TestLoader_LoadFile_Errors(t *testing.T) {
	l := NewLoader()

	if err := l.LoadFile(""); err != nil {
		t.Errorf("LoadFile(\"\") error = %v", err)
	}
	if err := l.LoadFile("/nonexistent/replikv.yaml"); err == nil {
		t.Error("LoadFile() should fail for a missing file")
	}
	if err := l.LoadFile(writeConfig(t, "server: [unclosed")); err == nil {
		t.Error("LoadFile() should fail for invalid YAML")
	}
}

func TestLoader_LoadEnv(t *testing.T) {
	t.Setenv("REPLIKV_SERVER_REDIS_PORT", "7000")
	t.Setenv("REPLIKV_REPLICATION_REPLICAOF", "10.0.0.1 6379")

	l := NewLoader()
	if err := l.LoadEnv(); err != nil {
		t.Fatalf("LoadEnv() error = %v", err)
	}

	if got := l.GetString("server.redis.port"); got != "7000" {
		t.Errorf("server.redis.port = %q, want 7000", got)
	}
	if got := l.GetString("replication.replicaof"); got != "10.0.0.1 6379" {
		t.Errorf("replication.replicaof = %q", got)
	}
}

func TestLoader_LoadEnv_CustomPrefix(t *testing.T) {
	t.Setenv("MYKV_LOG_LEVEL", "debug")

	l := NewLoader(WithEnvPrefix("MYKV_"))
	if err := l.LoadEnv(); err != nil {
		t.Fatalf("LoadEnv() error = %v", err)
	}

	if got := l.GetString("log.level"); got != "debug" {
		t.Errorf("log.level = %q, want debug", got)
	}
}

func TestLoader_LoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	writeFile(t, path, "REPLIKV_DOTENV_TEST_HOST=from-dotenv\n")
	t.Setenv("REPLIKV_DOTENV_TEST_HOST", "")
	os.Unsetenv("REPLIKV_DOTENV_TEST_HOST")

	l := NewLoader(WithDotEnv(path))
	if err := l.LoadDotEnv(); err != nil {
		t.Fatalf("LoadDotEnv() error = %v", err)
	}
	if got := os.Getenv("REPLIKV_DOTENV_TEST_HOST"); got != "from-dotenv" {
		t.Errorf("env = %q, want from-dotenv", got)
	}
}

func TestLoader_LoadDotEnv_ExistingWins(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	writeFile(t, path, "REPLIKV_DOTENV_KEEP=from-dotenv\n")
	t.Setenv("REPLIKV_DOTENV_KEEP", "from-process")

	if err := NewLoader(WithDotEnv(path)).LoadDotEnv(); err != nil {
		t.Fatalf("LoadDotEnv() error = %v", err)
	}
	if got := os.Getenv("REPLIKV_DOTENV_KEEP"); got != "from-process" {
		t.Errorf("env = %q, want from-process", got)
	}
}

func TestLoader_LoadDotEnv_Missing(t *testing.T) {
	l := NewLoader(WithDotEnv(filepath.Join(t.TempDir(), "absent.env")))
	if err := l.LoadDotEnv(); err != nil {
		t.Errorf("LoadDotEnv() error = %v, want nil for a missing file", err)
	}
	if err := NewLoader(WithDotEnv("")).LoadDotEnv(); err != nil {
		t.Errorf("LoadDotEnv() disabled error = %v", err)
	}
}

func TestLoader_Load_Priority(t *testing.T) {
	t.Setenv("REPLIKV_SERVER_REDIS_HOST", "from-env")

	l := NewLoader(WithConfigFile(writeConfig(t, testYAML)), WithDotEnv(""))

	var cfg testConfig
	cfg.Server.HTTP.Addr = "default:1"
	if err := l.Load(&cfg); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Redis.Host != "from-env" {
		t.Errorf("Host = %q, want from-env (env overrides file)", cfg.Server.Redis.Host)
	}
	if cfg.Server.Redis.Port != 6380 {
		t.Errorf("Port = %d, want 6380 from file", cfg.Server.Redis.Port)
	}
	if cfg.Server.HTTP.Addr != "127.0.0.1:9121" {
		t.Errorf("Addr = %q, want file value", cfg.Server.HTTP.Addr)
	}
	if !l.IsLoaded() {
		t.Error("IsLoaded() should be true after Load()")
	}

	if err := l.LoadMap(map[string]any{"server.redis.port": 7001}); err != nil {
		t.Fatalf("LoadMap() error = %v", err)
	}
	if err := l.Unmarshal(&cfg); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if cfg.Server.Redis.Port != 7001 {
		t.Errorf("Port = %d, want 7001 (flags override everything)", cfg.Server.Redis.Port)
	}
	if cfg.Server.Redis.Host != "from-env" {
		t.Errorf("Host = %q, flag override must keep other keys", cfg.Server.Redis.Host)
	}
}

func TestLoader_Load_KeepsDefaults(t *testing.T) {
	l := NewLoader(WithDotEnv(""))

	var cfg testConfig
	cfg.Server.Redis.Port = 6379
	if err := l.Load(&cfg); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Redis.Port != 6379 {
		t.Errorf("Port = %d, want default 6379", cfg.Server.Redis.Port)
	}
}
