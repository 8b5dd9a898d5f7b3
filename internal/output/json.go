package output

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/masmgr/gitcommits-go/internal/aggregation"
	"github.com/masmgr/gitcommits-go/internal/git"
)

// JSONAuthor is an identity in JSON output.
type JSONAuthor struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// JSONChange is one classified change in JSON output.
type JSONChange struct {
	Kind    string `json:"kind"`
	Path    string `json:"path"`
	OldPath string `json:"oldPath,omitempty"`
	OldSize *int64 `json:"oldSize,omitempty"`
	NewSize *int64 `json:"newSize,omitempty"`
	Delta   int64  `json:"delta"`
}

// JSONCommit is one commit and its changes in JSON output.
type JSONCommit struct {
	SHA       string       `json:"sha"`
	Date      string       `json:"date"`
	Author    JSONAuthor   `json:"author"`
	Committer JSONAuthor   `json:"committer"`
	Message   string       `json:"message"`
	Parents   int          `json:"parents"`
	NetDelta  int64        `json:"netDelta"`
	Changes   []JSONChange `json:"changes,omitempty"`
}

func toJSONChange(change git.Change) JSONChange {
	row := flattenChange(change)
	jc := JSONChange{
		Kind:    row.Kind.String(),
		Path:    row.Path,
		OldPath: row.OldPath,
		Delta:   git.SizeDelta(change),
	}
	switch change.Kind() {
	case git.ChangeKindAdded:
		jc.NewSize = &row.NewSize
	case git.ChangeKindDeleted:
		jc.OldSize = &row.OldSize
	default:
		jc.OldSize, jc.NewSize = &row.OldSize, &row.NewSize
	}
	return jc
}

func toJSONChanges(changes []git.Change) []JSONChange {
	out := make([]JSONChange, len(changes))
	for i, change := range changes {
		out[i] = toJSONChange(change)
	}
	return out
}

func toJSONCommit(cs git.CommitChangeSet, withChanges bool) JSONCommit {
	c := cs.Commit
	jc := JSONCommit{
		SHA:       c.SHA,
		Date:      c.When.Format(time.RFC3339),
		Author:    JSONAuthor{Name: c.Author.Name, Email: c.Author.Email},
		Committer: JSONAuthor{Name: c.Committer.Name, Email: c.Committer.Email},
		Message:   c.Message,
		Parents:   c.Parents,
		NetDelta:  cs.NetDelta(),
	}
	if withChanges {
		jc.Changes = toJSONChanges(cs.Changes)
	}
	return jc
}

// JSONLogWriter writes commits as one JSON array, element by element.
type JSONLogWriter struct {
	out     io.Writer
	options OutputOptions
	started bool
}

// WriteCommit appends one commit to the array.
func (w *JSONLogWriter) WriteCommit(cs git.CommitChangeSet) error {
	data, err := json.MarshalIndent(toJSONCommit(cs, !w.options.NoChanges), "  ", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	sep := ",\n  "
	if !w.started {
		sep = "[\n  "
		w.started = true
	}
	_, err = fmt.Fprintf(w.out, "%s%s", sep, data)
	return err
}

// Close terminates the array.
func (w *JSONLogWriter) Close() error {
	if !w.started {
		_, err := fmt.Fprintln(w.out, "[]")
		return err
	}
	_, err := fmt.Fprintln(w.out, "\n]")
	return err
}

// JSONDiffWriter writes diff reports as JSON.
type JSONDiffWriter struct{}

// JSONDiffReport is the JSON output structure for a diff.
type JSONDiffReport struct {
	RepoPath    string       `json:"repo"`
	Base        string       `json:"base"`
	Head        string       `json:"head"`
	MergeBase   string       `json:"mergeBase,omitempty"`
	GeneratedAt string       `json:"generatedAt"`
	NetDelta    int64        `json:"netDelta"`
	Changes     []JSONChange `json:"changes"`
}

// Write outputs the diff report as JSON.
func (w *JSONDiffWriter) Write(out io.Writer, report *DiffReport, options OutputOptions) error {
	r := report.Result
	return writeJSON(out, JSONDiffReport{
		RepoPath:    report.RepoPath,
		Base:        r.Base,
		Head:        r.Head,
		MergeBase:   r.MergeBase,
		GeneratedAt: report.GeneratedAt.Format(time.RFC3339),
		NetDelta:    summarize(r.Changes).NetDelta,
		Changes:     toJSONChanges(r.Changes),
	})
}

// JSONStatsWriter writes stats reports as JSON.
type JSONStatsWriter struct{}

// JSONStatsReport is the JSON output structure for a stats report.
type JSONStatsReport struct {
	RepoPath    string             `json:"repo"`
	Since       *string            `json:"since,omitempty"`
	Until       string             `json:"until"`
	GeneratedAt string             `json:"generatedAt"`
	Totals      JSONTotals         `json:"totals"`
	SortKey     string             `json:"sortKey"`
	Files       []JSONFileItem     `json:"files"`
	Commits     []JSONCommitItem   `json:"commits"`
	Couplings   []JSONCouplingItem `json:"couplings,omitempty"`
}

// JSONTotals holds the totals of a stats report.
type JSONTotals struct {
	Commits         int    `json:"commits"`
	Authors         int    `json:"authors"`
	Added           int    `json:"added"`
	Modified        int    `json:"modified"`
	Deleted         int    `json:"deleted"`
	Renamed         int    `json:"renamed"`
	BytesAdded      int64  `json:"bytesAdded"`
	BytesRemoved    int64  `json:"bytesRemoved"`
	NetDelta        int64  `json:"netDelta"`
	First           string `json:"first,omitempty"`
	Last            string `json:"last,omitempty"`
	BusiestStart    string `json:"busiestStart,omitempty"`
	BusiestCommits  int    `json:"busiestCommits"`
	MatchingCommits *int   `json:"matchingCommits,omitempty"`
}

// JSONFileItem is the JSON output structure for a single file.
type JSONFileItem struct {
	Path           string   `json:"path"`
	PreviousPaths  []string `json:"previousPaths,omitempty"`
	Deleted        bool     `json:"deleted"`
	CurrentSize    int64    `json:"currentSize"`
	PeakSize       int64    `json:"peakSize"`
	BytesAdded     int64    `json:"bytesAdded"`
	BytesRemoved   int64    `json:"bytesRemoved"`
	CommitCount    int      `json:"commitCount"`
	RenameCount    int      `json:"renameCount"`
	Contributors   int      `json:"contributors"`
	OwnershipRatio float64  `json:"ownershipRatio"`
	BurstScore     float64  `json:"burstScore"`
	ActivityScore  float64  `json:"activityScore"`
	FirstSeen      string   `json:"firstSeen"`
	LastModified   string   `json:"lastModified"`
	Matches        *int     `json:"matches,omitempty"`
}

// JSONCommitItem is the JSON output structure for a single commit's metrics.
type JSONCommitItem struct {
	SHA            string  `json:"sha"`
	Date           string  `json:"date"`
	Author         string  `json:"author"`
	Message        string  `json:"message"`
	FileCount      int     `json:"fileCount"`
	DirectoryCount int     `json:"directoryCount"`
	SubsystemCount int     `json:"subsystemCount"`
	BytesAdded     int64   `json:"bytesAdded"`
	BytesRemoved   int64   `json:"bytesRemoved"`
	NetDelta       int64   `json:"netDelta"`
	SizeEntropy    float64 `json:"sizeEntropy"`
}

// JSONCouplingItem is the JSON output structure for a single coupling.
type JSONCouplingItem struct {
	FileA              string  `json:"fileA"`
	FileB              string  `json:"fileB"`
	CoCommitCount      int     `json:"coCommitCount"`
	FileACommitCount   int     `json:"fileACommitCount"`
	FileBCommitCount   int     `json:"fileBCommitCount"`
	JaccardCoefficient float64 `json:"jaccardCoefficient"`
	Confidence         float64 `json:"confidence"`
	Lift               float64 `json:"lift"`
}

func toJSONFileItem(fm *aggregation.FileMetrics, fixCounts map[string]int) JSONFileItem {
	item := JSONFileItem{
		Path:           fm.Path,
		PreviousPaths:  fm.PreviousPaths,
		Deleted:        fm.Deleted,
		CurrentSize:    fm.CurrentSize,
		PeakSize:       fm.PeakSize,
		BytesAdded:     fm.BytesAdded,
		BytesRemoved:   fm.BytesRemoved,
		CommitCount:    fm.CommitCount,
		RenameCount:    fm.RenameCount,
		Contributors:   fm.ContributorCount(),
		OwnershipRatio: fm.OwnershipRatio(),
		BurstScore:     fm.BurstScore,
		ActivityScore:  fm.ActivityScore,
		FirstSeen:      fm.FirstSeenAt.Format(time.RFC3339),
		LastModified:   fm.LastModifiedAt.Format(time.RFC3339),
	}
	if fixCounts != nil {
		n := fixCounts[fm.Path]
		item.Matches = &n
	}
	return item
}

func toJSONTotals(report *StatsReport) JSONTotals {
	t := report.Totals
	totals := JSONTotals{
		Commits:        t.Commits,
		Authors:        t.Authors,
		Added:          t.Added,
		Modified:       t.Modified,
		Deleted:        t.Deleted,
		Renamed:        t.Renamed,
		BytesAdded:     t.BytesAdded,
		BytesRemoved:   t.BytesRemoved,
		NetDelta:       t.NetDelta(),
		BusiestCommits: report.Busiest.Count,
	}
	if !t.First.IsZero() {
		totals.First = t.First.Format(time.RFC3339)
		totals.Last = t.Last.Format(time.RFC3339)
	}
	if report.Busiest.Count > 0 {
		totals.BusiestStart = report.Busiest.Start.Format(time.RFC3339)
	}
	if report.FixCounts != nil {
		n := report.FixTotal
		totals.MatchingCommits = &n
	}
	return totals
}

// Write outputs the stats report as JSON.
func (w *JSONStatsWriter) Write(out io.Writer, report *StatsReport, options OutputOptions) error {
	files := limitTop(report.Files, options.Top)
	commits := limitTop(report.Commits, options.Top)

	jr := JSONStatsReport{
		RepoPath:    report.RepoPath,
		Since:       formatSinceDate(report.Since),
		Until:       report.Until.Format(reportDateLayout),
		GeneratedAt: report.GeneratedAt.Format(time.RFC3339),
		Totals:      toJSONTotals(report),
		SortKey:     string(report.SortKey),
		Files:       make([]JSONFileItem, len(files)),
		Commits:     make([]JSONCommitItem, len(commits)),
	}
	for i, fm := range files {
		jr.Files[i] = toJSONFileItem(fm, report.FixCounts)
	}
	for i, cm := range commits {
		jr.Commits[i] = JSONCommitItem{
			SHA:            cm.SHA,
			Date:           cm.When.Format(time.RFC3339),
			Author:         cm.Author.Email,
			Message:        cm.Message,
			FileCount:      cm.FileCount,
			DirectoryCount: cm.DirectoryCount,
			SubsystemCount: cm.SubsystemCount,
			BytesAdded:     cm.BytesAdded,
			BytesRemoved:   cm.BytesRemoved,
			NetDelta:       cm.NetDelta(),
			SizeEntropy:    cm.SizeEntropy,
		}
	}
	if report.Coupling != nil {
		for _, c := range limitTop(report.Coupling.Couplings, options.Top) {
			jr.Couplings = append(jr.Couplings, JSONCouplingItem{
				FileA:              c.FileA,
				FileB:              c.FileB,
				CoCommitCount:      c.CoCommitCount,
				FileACommitCount:   c.FileACommitCount,
				FileBCommitCount:   c.FileBCommitCount,
				JaccardCoefficient: c.JaccardCoefficient,
				Confidence:         c.Confidence,
				Lift:               c.Lift,
			})
		}
	}

	return writeJSON(out, jr)
}

func writeJSON(out io.Writer, data interface{}) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}
