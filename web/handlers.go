package web

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cgim/ledger-sheets/export"
	"github.com/cgim/ledger-sheets/ledger"
)

// number of blank rows offered for new entries in the editable table
const blankRows = 3

var messages = map[string]string{
	"saved":   "Entry saved.",
	"updated": "Ledger updated with your edits.",
}

type form struct {
	Author      string `json:"author"`
	Date        string `json:"date"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

type page struct {
	Title       string
	Link        string
	Placeholder string
	Names       []string
	Categories  []string
	Header      []string
	Form        form
	Records     [][]string
	Blank       []int
	Revision    string
	Status      string
	Error       string
	Loaded      bool
}

func (s *Server) index(c *gin.Context) {
	s.render(c, http.StatusOK, page{
		Status: messages[c.Query("status")],
	})
}

func (s *Server) submit(c *gin.Context) {
	f := form{
		Author:      c.PostForm("author"),
		Date:        c.PostForm("date"),
		Category:    c.PostForm("category"),
		Description: c.PostForm("description"),
	}

	if err := s.save(c, f); err != nil {
		c.Error(err)
		s.render(c, status(err), page{Form: f, Error: message(err)})
		return
	}

	c.Redirect(http.StatusSeeOther, "/?status=saved")
}

func (s *Server) reconcile(c *gin.Context) {
	ctx, cancel := s.context(c)
	defer cancel()

	table, err := s.edited(c)
	if err == nil {
		revision := ""
		if s.options.CheckRevision {
			revision = c.PostForm("revision")
		}

		err = s.ledger.Reconcile(ctx, table, revision)
	}

	if err != nil {
		c.Error(err)

		p := page{Error: message(err)}
		if table != nil {
			p.Records = pending(table.Records)
			if !errors.Is(err, ledger.ErrConflict) {
				p.Revision = c.PostForm("revision")
			}
		}

		s.render(c, status(err), p)
		return
	}

	c.Redirect(http.StatusSeeOther, "/?status=updated")
}

func (s *Server) export(c *gin.Context) {
	ctx, cancel := s.context(c)
	defer cancel()

	table, err := s.ledger.FetchAll(ctx)
	if err != nil {
		c.Error(err)
		c.String(status(err), message(err))
		return
	}

	var b bytes.Buffer
	if err := export.XLSX(&b, "Ledger", table); err != nil {
		c.Error(err)
		c.String(http.StatusInternalServerError, message(err))
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"ledger-%s.xlsx\"", time.Now().Format("20060102")))
	c.Data(http.StatusOK, export.ContentType, b.Bytes())
}

func (s *Server) list(c *gin.Context) {
	ctx, cancel := s.context(c)
	defer cancel()

	table, err := s.ledger.FetchAll(ctx)
	if err != nil {
		failure(c, err)
		return
	}

	revision := ""
	if s.options.CheckRevision {
		if revision, err = s.ledger.Revision(ctx); err != nil {
			failure(c, err)
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"header":   table.Header,
		"records":  table.Records,
		"revision": revision,
	})
}

func (s *Server) create(c *gin.Context) {
	var f form
	if err := c.ShouldBindJSON(&f); err != nil {
		failure(c, &ledger.ValidationError{Field: "request", Message: err.Error()})
		return
	}

	if err := s.save(c, f); err != nil {
		failure(c, err)
		return
	}

	date, _ := ledger.ParseDate(f.Date)
	description := strings.TrimSpace(f.Description)

	c.JSON(http.StatusCreated, gin.H{
		"entry": gin.H{
			"date":        date.Format(ledger.DateFormat),
			"category":    strings.TrimSpace(f.Category),
			"description": description,
			"summary":     ledger.Summarise(date, description),
			"author":      strings.TrimSpace(f.Author),
		},
	})
}

func (s *Server) save(c *gin.Context, f form) error {
	entry, err := f.entry()
	if err != nil {
		return err
	}

	ctx, cancel := s.context(c)
	defer cancel()

	return s.ledger.Submit(ctx, entry)
}

// edited rebuilds the ledger table from the editable table form fields. Rows marked
// for deletion are dropped.
func (s *Server) edited(c *gin.Context) (*ledger.Table, error) {
	dates := c.PostFormArray("date")
	categories := c.PostFormArray("category")
	descriptions := c.PostFormArray("description")
	authors := c.PostFormArray("author")

	if len(categories) != len(dates) || len(descriptions) != len(dates) || len(authors) != len(dates) {
		return nil, &ledger.ValidationError{Field: "table", Message: "incomplete table rows"}
	}

	deleted := map[int]bool{}
	for _, v := range c.PostFormArray("delete") {
		if i, err := strconv.Atoi(v); err == nil {
			deleted[i] = true
		}
	}

	records := [][]string{}
	for i := range dates {
		if !deleted[i] {
			records = append(records, []string{dates[i], categories[i], descriptions[i], "", authors[i]})
		}
	}

	return &ledger.Table{
		Header:  s.ledger.Options().Header,
		Records: records,
	}, nil
}

// pending returns the non-blank edited rows, for redisplay after a failed update.
func pending(records [][]string) [][]string {
	list := [][]string{}
	for _, record := range records {
		if strings.TrimSpace(strings.Join(record, "")) != "" {
			list = append(list, record)
		}
	}

	return list
}

// render renders the form page with the current ledger content. Rows and revision
// already set on the page are kept. A ledger that cannot be loaded is reported on
// the page.
func (s *Server) render(c *gin.Context, code int, p page) {
	options := s.ledger.Options()

	p.Title = s.options.Title
	p.Link = s.options.Link
	p.Placeholder = options.Placeholder
	p.Names = options.Names()
	p.Categories = options.Categories
	p.Header = options.Header

	if p.Form.Date == "" {
		p.Form.Date = ledger.Today().Format("2006-01-02")
	}

	if err := s.load(c, &p); err != nil {
		c.Error(err)

		if p.Error == "" {
			p.Error = message(err)
		}

		if code == http.StatusOK {
			code = status(err)
		}
	}

	c.HTML(code, "index.html", p)
}

func (s *Server) load(c *gin.Context, p *page) error {
	ctx, cancel := s.context(c)
	defer cancel()

	if err := s.ledger.EnsureHeader(ctx); err != nil {
		return err
	}

	table, err := s.ledger.FetchAll(ctx)
	if err != nil {
		return err
	}

	if s.options.CheckRevision && p.Revision == "" {
		if p.Revision, err = s.ledger.Revision(ctx); err != nil {
			return err
		}
	}

	if p.Records == nil {
		p.Records = table.Records
	}

	p.Loaded = true

	for i := 0; i < blankRows; i++ {
		p.Blank = append(p.Blank, len(p.Records)+i)
	}

	return nil
}

func (f form) entry() (ledger.Entry, error) {
	if strings.TrimSpace(f.Date) == "" {
		return ledger.Entry{}, &ledger.ValidationError{Field: "date", Message: "select the date of the activity"}
	}

	date, err := ledger.ParseDate(f.Date)
	if err != nil {
		return ledger.Entry{}, &ledger.ValidationError{Field: "date", Message: err.Error()}
	}

	return ledger.Entry{
		Date:        date,
		Category:    f.Category,
		Description: f.Description,
		Author:      f.Author,
	}, nil
}

func failure(c *gin.Context, err error) {
	c.Error(err)

	response := gin.H{"error": message(err)}

	var v *ledger.ValidationError
	if errors.As(err, &v) {
		response["field"] = v.Field
	}

	c.JSON(status(err), response)
}

func message(err error) string {
	var v *ledger.ValidationError
	if errors.As(err, &v) {
		return v.Message
	}

	return err.Error()
}
