package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matryer/is"
)

func isolate(t *testing.T) string {
	home := t.TempDir()
	t.Setenv("HOME", home)
	{
		wd, err := os.Getwd()
		if err != nil {
			t.Fatal(err)
		}
		if err := os.Chdir(t.TempDir()); err != nil {
			t.Fatal(err)
		}
		t.Cleanup(func() { _ = os.Chdir(wd) })
	}
	return home
}

func TestDefaults(t *testing.T) {
	is := is.New(t)
	isolate(t)

	cfg := &Config{}
	is.NoErr(cfg.Load(nil))
	is.Equal(cfg.GetInt(ConfigBoardRows), 20)
	is.Equal(cfg.GetInt(ConfigBoardCols), 10)
	is.Equal(cfg.GetInt(ConfigHiddenRows), 2)
	is.Equal(cfg.GetInt(ConfigLookahead), 2)
	is.Equal(cfg.GetInt(ConfigMaxLookahead), 3)
	is.Equal(cfg.GetString(ConfigSearchPolicy), "max-first")
	is.Equal(cfg.GetInt(ConfigSearchThreads), 1)
	is.True(cfg.GetBool(ConfigSearchLeafCache))
	is.Equal(cfg.GetString(ConfigBotChannel), "tetrad.bot")
	is.Equal(cfg.GetDuration(ConfigBotTimeout), 10*time.Second)
	is.Equal(cfg.GetInt(ConfigBotMaxRows), 64)
	is.Equal(cfg.GetInt(ConfigBotMaxCols), 32)
	is.Equal(cfg.GetInt(ConfigAutoplayMaxPieces), 500)
	is.Equal(cfg.GetString(ConfigAutoplayBoards), "")
	is.True(!cfg.GetBool(ConfigDebug))
}

func TestFlagsBeatEnvBeatFile(t *testing.T) {
	is := is.New(t)
	isolate(t)

	err := os.WriteFile("config.yaml", []byte("lookahead: 1\nboard-cols: 12\nsearch-threads: 2\n"), 0o644)
	is.NoErr(err)
	t.Setenv("TETRAD_BOARD_COLS", "8")
	t.Setenv("TETRAD_SEARCH_THREADS", "6")

	cfg := &Config{}
	is.NoErr(cfg.Load([]string{"--search-threads=4", "autoplay", "10"}))
	is.Equal(cfg.GetInt(ConfigLookahead), 1)
	is.Equal(cfg.GetInt(ConfigBoardCols), 8)
	is.Equal(cfg.GetInt(ConfigSearchThreads), 4)
	is.Equal(cfg.Args(), []string{"autoplay", "10"})
}

func TestBadFlag(t *testing.T) {
	is := is.New(t)
	isolate(t)

	cfg := &Config{}
	is.True(cfg.Load([]string{"--lookahead=deep"}) != nil)
}

func TestWriteCreatesHomeConfig(t *testing.T) {
	is := is.New(t)
	home := isolate(t)

	cfg := &Config{}
	is.NoErr(cfg.Load(nil))
	cfg.Set(ConfigLookahead, 3)
	is.NoErr(cfg.Write())

	path := filepath.Join(home, ".tetrad", "config.yaml")
	_, err := os.Stat(path)
	is.NoErr(err)

	again := &Config{}
	is.NoErr(again.Load(nil))
	is.Equal(again.GetInt(ConfigLookahead), 3)
	is.Equal(again.ConfigFileUsed(), path)
}

func TestHistoryFile(t *testing.T) {
	is := is.New(t)
	home := isolate(t)

	cfg := &Config{}
	is.NoErr(cfg.Load(nil))
	is.Equal(cfg.HistoryFile(), filepath.Join(home, ".tetrad", "history"))

	is.NoErr(cfg.Load([]string{"--shell-history-file=/tmp/h"}))
	is.Equal(cfg.HistoryFile(), "/tmp/h")
}

func TestSanitizedSettings(t *testing.T) {
	is := is.New(t)
	isolate(t)

	cfg := &Config{}
	is.NoErr(cfg.Load([]string{"--nats-url=nats://user:pw@example.com:4222"}))
	is.Equal(cfg.SanitizedSettings()[ConfigNatsURL], "<redacted>")
}
