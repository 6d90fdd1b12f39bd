package automatic

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matryer/is"
	"lukechampine.com/frand"

	"github.com/domino14/tetrad/config"
	"github.com/domino14/tetrad/game"
)

func testConfig(t *testing.T, args ...string) *config.Config {
	t.Setenv("HOME", t.TempDir())
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
	cfg := &config.Config{}
	if err := cfg.Load(append([]string{"--lookahead=1", "--autoplay-max-pieces=30"}, args...)); err != nil {
		t.Fatal(err)
	}
	return cfg
}

func seededRNG(b byte) *frand.RNG {
	var seed [32]byte
	seed[0] = b
	return frand.NewCustom(seed[:], 1024, 12)
}

func TestCompVsComp(t *testing.T) {
	is := is.New(t)
	cfg := testConfig(t)
	logchan := make(chan string, 1)
	runner, err := NewGameRunner(logchan, cfg)
	is.NoErr(err)

	is.NoErr(runner.CompVsComp(seededRNG(1)))
	line := <-logchan
	fields := strings.Split(strings.TrimSpace(line), ",")
	is.Equal(len(fields), 7)
	is.Equal(fields[0], runner.GameID())

	g := runner.Game()
	is.True(g.PiecesPlaced() == 30 || g.Playing() == game.PlayStateGameOver)
	is.Equal(g.Turn(), g.PiecesPlaced()+1)
}

func TestSameSeedSameGame(t *testing.T) {
	is := is.New(t)
	cfg := testConfig(t)
	logchan := make(chan string, 2)
	r1, err := NewGameRunner(logchan, cfg)
	is.NoErr(err)
	r2, err := NewGameRunner(logchan, cfg)
	is.NoErr(err)

	is.NoErr(r1.CompVsComp(seededRNG(9)))
	is.NoErr(r2.CompVsComp(seededRNG(9)))
	l1, l2 := <-logchan, <-logchan
	// everything but the game id matches
	is.Equal(l1[strings.IndexByte(l1, ','):], l2[strings.IndexByte(l2, ','):])
	is.True(r1.Game().Grid().Equal(r2.Game().Grid()))
}

func TestBadPolicy(t *testing.T) {
	is := is.New(t)
	cfg := testConfig(t, "--search-policy=sideways")
	_, err := NewGameRunner(nil, cfg)
	is.True(err != nil)
}

func TestStartAutoplayAndAnalyze(t *testing.T) {
	is := is.New(t)
	cfg := testConfig(t)
	out := filepath.Join(t.TempDir(), "autoplay.csv")

	err := StartAutoplay(context.Background(), cfg, 4, 2, out, GenerateSeeds(2))
	is.NoErr(err)
	is.Equal(AutoplayCounter.Value(), int64(4))
	is.Equal(IsPlaying.Value(), int64(0))

	contents, err := os.ReadFile(out)
	is.NoErr(err)
	lines := strings.Split(strings.TrimSpace(string(contents)), "\n")
	is.Equal(len(lines), 5)
	is.Equal(lines[0]+"\n", LogHeader)

	summary, err := AnalyzeLogFile(out)
	is.NoErr(err)
	is.True(strings.Contains(summary, "Games played: 4\n"))
}

func TestAutoplayWritesBoards(t *testing.T) {
	is := is.New(t)
	dir := t.TempDir()
	boards := filepath.Join(dir, "boards.txt")
	cfg := testConfig(t, "--autoplay-boards-file="+boards)
	out := filepath.Join(dir, "autoplay.csv")

	is.NoErr(StartAutoplay(context.Background(), cfg, 3, 2, out, GenerateSeeds(3)))

	contents, err := os.ReadFile(boards)
	is.NoErr(err)
	is.Equal(strings.Count(string(contents), "# game "), 3)
	// each board is headed by the game id from the log.
	csv, err := os.ReadFile(out)
	is.NoErr(err)
	for _, line := range strings.Split(strings.TrimSpace(string(csv)), "\n")[1:] {
		id := line[:strings.IndexByte(line, ',')]
		is.True(strings.Contains(string(contents), "# game "+id+"\n"))
	}
}

func TestCancelledAutoplay(t *testing.T) {
	is := is.New(t)
	cfg := testConfig(t)
	out := filepath.Join(t.TempDir(), "autoplay.csv")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	is.NoErr(StartAutoplay(ctx, cfg, 1000, 2, out, nil))
	is.True(AutoplayCounter.Value() < 1000)
}

func TestAnalyzeLogFile(t *testing.T) {
	is := is.New(t)
	path := filepath.Join(t.TempDir(), "log.csv")
	log := LogHeader +
		"a,100,30,3100,10,20,false\n" +
		"b,50,10,1000,6,4,true\n" +
		"c,60,14,1400,7,7,true\n"
	is.NoErr(os.WriteFile(path, []byte(log), 0o644))

	summary, err := AnalyzeLogFile(path)
	is.NoErr(err)
	is.True(strings.Contains(summary, "Games played: 3\n"))
	is.True(strings.Contains(summary, "Topped out: 2 (66.667%)\n"))
	is.True(strings.Contains(summary, "Pieces per game: 70.000"))
	is.True(strings.Contains(summary, "Lines per game: 18.000"))
	is.True(strings.Contains(summary, "Max: 30"))
	is.True(strings.Contains(summary, "Lines by player: 23, by bot: 31\n"))
}

func TestAnalyzeBadLog(t *testing.T) {
	is := is.New(t)
	path := filepath.Join(t.TempDir(), "log.csv")
	is.NoErr(os.WriteFile(path, []byte(LogHeader+"a,x,1,1,1,1,false\n"), 0o644))
	_, err := AnalyzeLogFile(path)
	is.True(err != nil)

	_, err = AnalyzeLogFile(filepath.Join(t.TempDir(), "missing.csv"))
	is.True(err != nil)
}

func TestSeedsRoundTrip(t *testing.T) {
	is := is.New(t)
	path := filepath.Join(t.TempDir(), "seeds.yaml")
	seeds := GenerateSeeds(3)
	is.NoErr(SaveSeeds(seeds, path))

	loaded, err := LoadSeeds(path)
	is.NoErr(err)
	is.Equal(loaded, seeds)

	is.NoErr(os.WriteFile(path, []byte("seeds: [\"abc\"]\n"), 0o644))
	_, err = LoadSeeds(path)
	is.True(err != nil)
}
