package automatic

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strconv"

	"github.com/aybabtme/uniplot/histogram"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/domino14/jieqi/stats"
)

const (
	confidence     = 95
	histogramBins  = 10
	histogramWidth = 40
)

type tally struct {
	games, wins, draws float64
}

// Summary is the parsed content of a games CSV.
type Summary struct {
	Games     int
	RedWins   int
	BlackWins int
	Draws     int
	Plies     stats.Statistic
	Reasons   map[string]int

	byStrategy map[string]*tally
	plies      []float64
}

// Score is a strategy's match score (draws count half) and the half-width
// of its confidence interval.
func (s *Summary) Score(name string) (rate, halfWidth float64, ok bool) {
	t, ok := s.byStrategy[name]
	if !ok {
		return 0, 0, false
	}
	rate, halfWidth = stats.ScoreRate(t.wins, t.draws, int(t.games), confidence)
	return rate, halfWidth, true
}

// Strategies lists the strategies that appear in the log.
func (s *Summary) Strategies() []string {
	return slices.Sorted(maps.Keys(s.byStrategy))
}

// SummarizeLog reads a games CSV as written by StartCompVCompGames.
func SummarizeLog(r io.Reader) (*Summary, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 6
	sum := &Summary{Reasons: map[string]int{}, byStrategy: map[string]*tally{}}
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if record[0] == "gameID" {
			continue
		}
		red, black, winner := record[1], record[2], record[3]
		plies, err := strconv.Atoi(record[4])
		if err != nil {
			return nil, fmt.Errorf("game %s: %w", record[0], err)
		}
		for _, name := range []string{red, black} {
			if sum.byStrategy[name] == nil {
				sum.byStrategy[name] = &tally{}
			}
		}
		sum.byStrategy[red].games++
		sum.byStrategy[black].games++
		switch winner {
		case "red":
			sum.RedWins++
			sum.byStrategy[red].wins++
		case "black":
			sum.BlackWins++
			sum.byStrategy[black].wins++
		case "draw":
			sum.Draws++
			sum.byStrategy[red].draws++
			sum.byStrategy[black].draws++
		default:
			return nil, fmt.Errorf("game %s: bad winner %q", record[0], winner)
		}
		sum.Games++
		sum.Plies.Push(float64(plies))
		sum.plies = append(sum.plies, float64(plies))
		sum.Reasons[record[5]]++
	}
	return sum, nil
}

// AnalyzeLogFile analyzes the given game CSV file and spits out a bunch of
// statistics.
func AnalyzeLogFile(filepath string) (string, error) {
	file, err := os.Open(filepath)
	if err != nil {
		return "", err
	}
	defer file.Close()
	sum, err := SummarizeLog(file)
	if err != nil {
		return "", err
	}
	return sum.Report()
}

// Report renders the summary for people.
func (s *Summary) Report() (string, error) {
	p := message.NewPrinter(language.English)
	var buf bytes.Buffer
	p.Fprintf(&buf, "Games played: %d\n", s.Games)
	if s.Games == 0 {
		return buf.String(), nil
	}
	n := float64(s.Games)
	p.Fprintf(&buf, "Red wins: %d (%.3f%%)\n", s.RedWins, 100*float64(s.RedWins)/n)
	p.Fprintf(&buf, "Black wins: %d (%.3f%%)\n", s.BlackWins, 100*float64(s.BlackWins)/n)
	p.Fprintf(&buf, "Draws: %d (%.3f%%)\n", s.Draws, 100*float64(s.Draws)/n)
	for _, name := range s.Strategies() {
		t := s.byStrategy[name]
		rate, hw, _ := s.Score(name)
		p.Fprintf(&buf, "%v: %.0f games, %.0f wins, %.0f draws, score %.3f ± %.3f (%d%% confidence)\n",
			name, t.games, t.wins, t.draws, rate, hw, confidence)
	}
	p.Fprintf(&buf, "Plies: mean %.2f  stdev %.2f  min %.0f  max %.0f\n",
		s.Plies.Mean(), s.Plies.Stdev(), s.Plies.Min(), s.Plies.Max())
	for _, reason := range slices.Sorted(maps.Keys(s.Reasons)) {
		p.Fprintf(&buf, "Ended by %s: %d\n", reason, s.Reasons[reason])
	}
	if s.Plies.Min() == s.Plies.Max() {
		return buf.String(), nil
	}
	buf.WriteString("Game length histogram:\n")
	hist := histogram.Hist(histogramBins, s.plies)
	if err := histogram.Fprint(&buf, hist, histogram.Linear(histogramWidth)); err != nil {
		return "", err
	}
	return buf.String(), nil
}
