// Package client is a typed HTTP client for the five gradebook endpoints.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/pr-poehali-dev/elektronnyy-zhurnal-1/core"
	"github.com/pr-poehali-dev/elektronnyy-zhurnal-1/core/school"
	"github.com/pr-poehali-dev/elektronnyy-zhurnal-1/core/user"
)

// maxErrorBody caps how much of an error response is read.
const maxErrorBody = 64 << 10

type (
	// Endpoints holds the absolute URL of each resource.
	Endpoints struct {
		Auth     string
		Students string
		Grades   string
		Schedule string
		Classes  string
	}

	Client struct {
		http      *http.Client
		endpoints Endpoints
	}

	Option func(*Client)
)

// NewEndpoints resolves the configured endpoints, defaulting each one to "<BaseURL>/<resource>".
func NewEndpoints(conf core.ClientConfig) Endpoints {
	base := strings.TrimRight(conf.BaseURL, "/")
	pick := func(configured, resource string) string {
		if configured != "" {
			return configured
		}
		return base + "/" + resource
	}
	return Endpoints{
		Auth:     pick(conf.Endpoints.Auth, "auth"),
		Students: pick(conf.Endpoints.Students, "students"),
		Grades:   pick(conf.Endpoints.Grades, "grades"),
		Schedule: pick(conf.Endpoints.Schedule, "schedule"),
		Classes:  pick(conf.Endpoints.Classes, "classes"),
	}
}

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func New(conf core.ClientConfig, opts ...Option) *Client {
	c := &Client{
		http:      &http.Client{Timeout: conf.RequestTimeout},
		endpoints: NewEndpoints(conf),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Endpoints() Endpoints {
	return c.endpoints
}

// =========================================================================
// Auth

// Login posts the credentials and returns the authenticated user record.
// A rejection is an *APIError carrying the server message.
func (c *Client) Login(ctx context.Context, email, password string) (user.User, error) {
	var usr user.User
	err := c.do(ctx, http.MethodPost, c.endpoints.Auth, nil, user.Credentials{Email: email, Password: password}, &usr)
	return usr, err
}

// =========================================================================
// Students

// Students lists the roster; a null classID lists every student.
func (c *Client) Students(ctx context.Context, classID null.Int) ([]user.Student, error) {
	q := make(url.Values)
	if classID.Valid {
		q.Set("classId", strconv.Itoa(classID.Int))
	}
	students := make([]user.Student, 0)
	err := c.do(ctx, http.MethodGet, c.endpoints.Students, q, nil, &students)
	return students, err
}

func (c *Client) AddStudent(ctx context.Context, ns user.NewStudent) (school.Created, error) {
	var created school.Created
	err := c.do(ctx, http.MethodPost, c.endpoints.Students, nil, ns, &created)
	return created, err
}

func (c *Client) DeleteStudent(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, c.endpoints.Students, idQuery("id", id), nil, nil)
}

// =========================================================================
// Grades

func (c *Client) Grades(ctx context.Context, studentID int) (school.GradeReport, error) {
	var report school.GradeReport
	if err := c.do(ctx, http.MethodGet, c.endpoints.Grades, idQuery("studentId", studentID), nil, &report); err != nil {
		return school.GradeReport{}, err
	}
	if report.Grades == nil {
		report.Grades = []school.Grade{}
	}
	return report, nil
}

func (c *Client) AddGrade(ctx context.Context, ng school.NewGrade) (school.Created, error) {
	var created school.Created
	err := c.do(ctx, http.MethodPost, c.endpoints.Grades, nil, ng, &created)
	return created, err
}

// =========================================================================
// Schedule

func (c *Client) Schedule(ctx context.Context, classID int) ([]school.ScheduleItem, error) {
	items := make([]school.ScheduleItem, 0)
	err := c.do(ctx, http.MethodGet, c.endpoints.Schedule, idQuery("classId", classID), nil, &items)
	return items, err
}

func (c *Client) AddScheduleItem(ctx context.Context, ns school.NewScheduleItem) (school.Created, error) {
	var created school.Created
	err := c.do(ctx, http.MethodPost, c.endpoints.Schedule, nil, ns, &created)
	return created, err
}

// =========================================================================
// Classes

// Classes lists classes; a null teacherID lists every class.
func (c *Client) Classes(ctx context.Context, teacherID null.Int) ([]school.Class, error) {
	q := make(url.Values)
	if teacherID.Valid {
		q.Set("teacherId", strconv.Itoa(teacherID.Int))
	}
	classes := make([]school.Class, 0)
	err := c.do(ctx, http.MethodGet, c.endpoints.Classes, q, nil, &classes)
	return classes, err
}

func (c *Client) AddClass(ctx context.Context, nc school.NewClass) (school.Created, error) {
	var created school.Created
	err := c.do(ctx, http.MethodPost, c.endpoints.Classes, nil, nc, &created)
	return created, err
}

func (c *Client) DeleteClass(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, c.endpoints.Classes, idQuery("id", id), nil, nil)
}

// =========================================================================
// Transport

func idQuery(name string, id int) url.Values {
	return url.Values{name: []string{strconv.Itoa(id)}}
}

// do sends a JSON request and decodes a 2xx JSON response into out (ignored when nil).
func (c *Client) do(ctx context.Context, method, endpoint string, query url.Values, in, out interface{}) error {
	u := endpoint
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return errors.Wrap(err, "encoding request")
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return errors.Wrapf(err, "building %s %s", method, endpoint)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &TransportError{Op: method + " " + endpoint, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newAPIError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err = json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &TransportError{Op: fmt.Sprintf("decoding %s %s", method, endpoint), Err: err}
	}
	return nil
}
