package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/lazypower/texprogress/internal/auth"
)

func testToken(t *testing.T) auth.Token {
	t.Helper()
	tok, err := auth.NewToken("test-token")
	if err != nil {
		t.Fatal(err)
	}
	return tok
}

func TestListRepositoriesPaginates(t *testing.T) {
	var pages []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/user/repos" {
			http.NotFound(w, r)
			return
		}
		if got := r.Header.Get("Authorization"); got != "token test-token" {
			t.Errorf("Authorization = %q", got)
		}
		if got := r.Header.Get("Accept"); got != "application/vnd.github.v3+json" {
			t.Errorf("Accept = %q", got)
		}
		q := r.URL.Query()
		if q.Get("affiliation") != "owner" {
			t.Errorf("affiliation = %q, want owner", q.Get("affiliation"))
		}
		if q.Get("per_page") != "2" {
			t.Errorf("per_page = %q, want 2", q.Get("per_page"))
		}
		page, _ := strconv.Atoi(q.Get("page"))
		pages = append(pages, q.Get("page"))

		var batch []Repository
		switch page {
		case 1:
			batch = []Repository{{Name: "a", CloneURL: "https://github.com/me/a.git"}, {Name: "b"}}
		case 2:
			batch = []Repository{{Name: "c", Private: true}}
		}
		json.NewEncoder(w).Encode(batch)
	}))
	defer srv.Close()

	c := NewClient(testToken(t), WithBaseURL(srv.URL+"/"), WithPerPage(2))
	repos, err := c.ListRepositories(context.Background())
	if err != nil {
		t.Fatalf("ListRepositories: %v", err)
	}
	if len(repos) != 3 {
		t.Fatalf("got %d repos, want 3", len(repos))
	}
	if repos[0].CloneURL != "https://github.com/me/a.git" {
		t.Errorf("CloneURL = %q", repos[0].CloneURL)
	}
	if !repos[2].Private {
		t.Error("repo c should be private")
	}
	if fmt.Sprint(pages) != "[1 2 3]" {
		t.Errorf("pages requested = %v, want [1 2 3]", pages)
	}
}

func TestListRepositoriesStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"Bad credentials"}`))
	}))
	defer srv.Close()

	c := NewClient(testToken(t), WithBaseURL(srv.URL))
	_, err := c.ListRepositories(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("err = %v, want *StatusError", err)
	}
	if se.Code != http.StatusUnauthorized {
		t.Errorf("Code = %d, want 401", se.Code)
	}
}

func TestCurrentUser(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/user" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`{"login":"octocat","id":1}`))
	}))
	defer srv.Close()

	login, err := NewClient(testToken(t), WithBaseURL(srv.URL)).CurrentUser(context.Background())
	if err != nil {
		t.Fatalf("CurrentUser: %v", err)
	}
	if login != "octocat" {
		t.Errorf("login = %q, want octocat", login)
	}
}

func TestOptionsIgnoreInvalid(t *testing.T) {
	c := NewClient(testToken(t), WithPerPage(500), WithAffiliation(""))
	if c.perPage != defaultPerPage {
		t.Errorf("perPage = %d, want %d", c.perPage, defaultPerPage)
	}
	if c.affiliation != "owner" {
		t.Errorf("affiliation = %q, want owner", c.affiliation)
	}
}

func TestDecodeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	if _, err := NewClient(testToken(t), WithBaseURL(srv.URL)).ListRepositories(context.Background()); err == nil {
		t.Error("expected decode error")
	}
}
