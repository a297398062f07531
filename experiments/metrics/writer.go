package metrics

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// AgentConfig describes one search agent taking part in an experiment.
type AgentConfig struct {
	ID          int           `json:"id"`
	Goroutines  int           `json:"goroutines"`
	Iterations  int           `json:"iterations"`
	Duration    time.Duration `json:"duration"`
	Exploration float64       `json:"exploration"`
	Temperature float64       `json:"temperature,omitempty"` // Samples moves when positive
}

type GameRecord struct {
	ID     int
	Agent1 int // AgentConfig.ID playing the starting player
	Agent2 int // AgentConfig.ID
	GameMetric
}

type MoveRecord struct {
	Game  int // GameRecord.ID
	Agent int // AgentConfig.ID
	MoveMetric
}

// Setup is stored next to the records so that a run can be reproduced.
type Setup struct {
	RunID    string        `json:"run_id"`
	Name     string        `json:"name"`
	NumGames int           `json:"num_games"`
	Seed     uint64        `json:"seed"`
	Configs  []AgentConfig `json:"configs"`
	MatchUps [][2]int      `json:"match_ups"`
	Started  time.Time     `json:"started"`
}

type Writer struct {
	RunID   string
	baseDir string
}

// NewWriter creates dir/name/<timestamp>-<run id> for one experiment run.
func NewWriter(dir, name string) (*Writer, error) {
	runID := uuid.New().String()
	timestamp := time.Now().UTC().Format("20060102T150405Z")
	baseDir := filepath.Join(dir, name, timestamp+"-"+runID[:8])
	err := os.MkdirAll(baseDir, 0755)
	if err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	return &Writer{
		RunID:   runID,
		baseDir: baseDir,
	}, nil
}

func (w *Writer) Dir() string {
	return w.baseDir
}

func (w *Writer) WriteSetup(setup Setup) error {
	setup.RunID = w.RunID
	return w.writeJSON("setup.json", setup)
}

func (w *Writer) WriteSummary(summaries []AgentSummary) error {
	return w.writeJSON("summary.json", summaries)
}

func (w *Writer) writeJSON(name string, v any) error {
	f, err := os.Create(filepath.Join(w.baseDir, name))
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", name, err)
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}

func (w *Writer) WriteAgentConfigs(configs []AgentConfig) error {
	rows := make([][]string, 0, len(configs))
	for _, config := range configs {
		rows = append(rows, []string{
			strconv.Itoa(config.ID),
			strconv.Itoa(config.Goroutines),
			strconv.Itoa(config.Iterations),
			config.Duration.String(),
			strconv.FormatFloat(config.Exploration, 'f', -1, 64),
			strconv.FormatFloat(config.Temperature, 'f', -1, 64),
		})
	}
	header := []string{"id", "goroutines", "iterations", "duration", "exploration", "temperature"}
	return w.writeCSV("agent_configs.csv", header, rows)
}

func (w *Writer) WriteGameRecords(records []GameRecord) error {
	rows := make([][]string, 0, len(records))
	for _, record := range records {
		rows = append(rows, []string{
			strconv.Itoa(record.ID),
			strconv.Itoa(record.Agent1),
			strconv.Itoa(record.Agent2),
			strconv.Itoa(record.StartingPlayer),
			strconv.Itoa(record.Winner),
			strconv.FormatFloat(record.Score, 'f', -1, 64),
			strconv.Itoa(record.TotalMoves),
			record.StartTime.Format(time.RFC3339),
			record.EndTime.Format(time.RFC3339),
			record.Duration.String(),
		})
	}
	header := []string{"id", "agent1", "agent2", "starting_player", "winner", "score", "total_moves", "start_time", "end_time", "duration"}
	return w.writeCSV("game_records.csv", header, rows)
}

func (w *Writer) WriteMoveRecords(records []MoveRecord) error {
	rows := make([][]string, 0, len(records))
	for _, record := range records {
		rows = append(rows, []string{
			strconv.Itoa(record.Game),
			strconv.Itoa(record.Agent),
			strconv.Itoa(record.Step),
			strconv.Itoa(record.Player),
			strconv.Itoa(record.Target),
			record.Elapsed.String(),
			strconv.Itoa(record.Episodes),
			strconv.Itoa(record.Playouts),
			strconv.Itoa(record.TreeSize),
			strconv.Itoa(record.MaxDepth),
			string(record.StopReason),
		})
	}
	header := []string{"game", "agent", "step", "player", "target", "duration", "episodes", "playouts", "tree_size", "max_depth", "stop_reason"}
	return w.writeCSV("move_records.csv", header, rows)
}

func (w *Writer) writeCSV(name string, header []string, rows [][]string) error {
	path := filepath.Join(w.baseDir, name)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", name, err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write %s header: %w", name, err)
	}
	if err := writer.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write %s rows: %w", name, err)
	}
	return nil
}
