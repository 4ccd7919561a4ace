package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/naka-gawa/candidate-stats/internal/domain"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/sirupsen/logrus"
)

// Report formats.
const (
	FormatTable = "table"
	FormatJSON  = "json"
)

var (
	okColor       = color.New(color.FgGreen)
	degradedColor = color.New(color.FgYellow, color.Bold)
	failureColor  = color.New(color.FgRed, color.Bold)
)

// ReportHook renders every finished profile to a writer.
type ReportHook struct {
	out    io.Writer
	format string
	logger logrus.FieldLogger
}

// NewReportHook creates a ReportHook writing in format (FormatTable or FormatJSON) to out.
func NewReportHook(out io.Writer, format string, logger logrus.FieldLogger) *ReportHook {
	return &ReportHook{out: out, format: format, logger: logger}
}

// report is the JSON document written in FormatJSON.
type report struct {
	ProfileURL   string               `json:"profile_url"`
	Resume       string               `json:"resume,omitempty"`
	Result       domain.ProfileResult `json:"result"`
	Distribution *Distribution        `json:"distribution,omitempty"`
}

func (h *ReportHook) Analyze(_ context.Context, profileURL string, result domain.ProfileResult, resumeReference string) {
	var err error
	if h.format == FormatJSON {
		err = h.writeJSON(profileURL, result, resumeReference)
	} else {
		err = h.writeTable(profileURL, result, resumeReference)
	}
	if err != nil {
		h.logger.WithField("stage", "hook").WithError(err).Error("failed to write report")
	}
}

func (h *ReportHook) writeJSON(profileURL string, result domain.ProfileResult, resumeReference string) error {
	doc := report{ProfileURL: profileURL, Resume: resumeReference, Result: result}
	if result.OK() {
		d := NewDistribution(result.Success)
		doc.Distribution = &d
	}
	enc := json.NewEncoder(h.out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return nil
}

func (h *ReportHook) writeTable(profileURL string, result domain.ProfileResult, resumeReference string) error {
	if !result.OK() {
		_, err := fmt.Fprintf(h.out, "%s %s: %s\n", failureColor.Sprint("FAILED"), profileURL, result.Failure.ErrorMessage)
		return err
	}
	profile := result.Success

	table := tablewriter.NewWriter(h.out)
	table.Header([]string{"Repository", "Languages", "Commits", "Status"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignLeft
	})

	var data [][]string
	for _, r := range profile.Repositories {
		data = append(data, []string{
			r.Name,
			strings.Join(r.Languages.Sorted(), ", "),
			strconv.Itoa(r.AttributedCommitCount),
			statusLabel(r.Status),
		})
	}
	if len(data) > 0 {
		if err := table.Bulk(data); err != nil {
			return err
		}
	}
	if err := table.Render(); err != nil {
		return err
	}

	d := NewDistribution(profile)
	languages := strings.Join(profile.AllLanguages.Sorted(), ", ")
	if languages == "" {
		languages = "-"
	}
	resume := resumeReference
	if resume == "" {
		resume = "-"
	}
	_, err := fmt.Fprintf(h.out,
		"User: %s (%s)\nLanguages: %s\nAttributed commits: %d (mean %.1f, median %.1f, p90 %.1f, max %d per repository)\nResume: %s\n",
		profile.Username, profileURL,
		languages,
		profile.TotalAttributedCommits, d.Mean, d.Median, d.P90, d.Max,
		resume,
	)
	return err
}

func statusLabel(s domain.RepositoryStatus) string {
	if s == domain.StatusDegraded {
		return degradedColor.Sprint(string(s))
	}
	return okColor.Sprint(string(s))
}
