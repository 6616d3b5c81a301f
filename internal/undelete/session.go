package undelete

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"dvrflow/internal/model"
)

// Backend is the single operation the session needs from the control
// connection.
type Backend interface {
	Undelete(rec model.Recording) error
}

// FilterByTitle keeps the recordings whose title matches the pattern,
// case-insensitively. An empty pattern keeps everything.
func FilterByTitle(recs []model.Recording, pattern string) ([]model.Recording, error) {
	if pattern == "" {
		return recs, nil
	}
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return nil, fmt.Errorf("bad title pattern: %w", err)
	}
	matched := make([]model.Recording, 0, len(recs))
	for _, rec := range recs {
		if re.MatchString(rec.Title) {
			matched = append(matched, rec)
		}
	}
	return matched, nil
}

// Session is the interactive confirm loop: the operator prunes a numbered
// candidate list and then restores whatever is left.
type Session struct {
	backend Backend
	in      *bufio.Scanner
	out     io.Writer
	recs    map[int]model.Recording
}

// NewSession builds a session over the given candidate list and terminal
// streams.
func NewSession(backend Backend, recs []model.Recording, in io.Reader, out io.Writer) *Session {
	indexed := make(map[int]model.Recording, len(recs))
	for i, rec := range recs {
		indexed[i] = rec
	}
	return &Session{
		backend: backend,
		in:      bufio.NewScanner(in),
		out:     out,
		recs:    indexed,
	}
}

// UndeleteAll restores every recording still in the session's list.
func (s *Session) UndeleteAll() error {
	for _, i := range s.sortedIndexes() {
		rec := s.recs[i]
		fmt.Fprintf(s.out, "undelete %s\n", rec.Name())
		if err := s.backend.Undelete(rec); err != nil {
			return err
		}
	}
	s.recs = map[int]model.Recording{}
	return nil
}

// Run prints the candidate list and processes operator commands until the
// list is confirmed, emptied, or the input stream ends.
func (s *Session) Run() error {
	s.list()
	for len(s.recs) > 0 {
		fmt.Fprint(s.out, "> ")
		if !s.in.Scan() {
			return s.in.Err()
		}
		switch line := s.in.Text(); line {
		case "", "help":
			fmt.Fprintln(s.out,
				"'ok' or 'yes' to confirm, and undelete all recordings in the current list.\n"+
					"'list'        to reprint the list.\n"+
					"<int>         to remove the recording from the list, and leave unchanged.")
		case "yes", "ok":
			return s.UndeleteAll()
		case "list":
			s.list()
		default:
			i, err := strconv.Atoi(line)
			if err != nil {
				fmt.Fprintln(s.out, "invalid input")
				continue
			}
			delete(s.recs, i)
		}
	}
	return nil
}

// list prints the current candidates and renumbers them 0..n-1, matching
// what the remove command acts on.
func (s *Session) list() {
	fmt.Fprintln(s.out, "Below is a list of matching recordings:")

	reindexed := make(map[int]model.Recording, len(s.recs))
	table := tablewriter.NewWriter(s.out)
	table.SetHeader([]string{"#", "Start", "Title"})
	table.SetBorder(false)
	table.SetColumnSeparator("")
	for n, i := range s.sortedIndexes() {
		rec := s.recs[i]
		reindexed[n] = rec
		title := rec.Title
		if rec.Subtitle != "" {
			title = rec.Title + " - " + rec.Subtitle
		}
		table.Append([]string{strconv.Itoa(n), rec.Key().BackendTime(), title})
	}
	table.Render()
	s.recs = reindexed
}

func (s *Session) sortedIndexes() []int {
	indexes := make([]int, 0, len(s.recs))
	for i := range s.recs {
		indexes = append(indexes, i)
	}
	sort.Ints(indexes)
	return indexes
}
