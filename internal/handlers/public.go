package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"devfolio/internal/cache"
	"devfolio/internal/middleware"
	"devfolio/internal/models"
	"devfolio/internal/render"
	"devfolio/internal/slug"
	"devfolio/internal/store"
)

const (
	homeSkills = 6
	homePosts  = 3
)

// Public serves the visitor-facing pages.
type Public struct {
	renderer  *render.Renderer
	stores    Stores
	pageCache *cache.PageCache
}

// NewPublic creates the public handler group. pageCache may be nil.
func NewPublic(renderer *render.Renderer, stores Stores, pageCache *cache.PageCache) *Public {
	return &Public{renderer: renderer, stores: stores, pageCache: pageCache}
}

// Home renders the profile, the first few skills and the latest posts.
func (p *Public) Home(w http.ResponseWriter, r *http.Request) {
	p.cached(w, r, func() (string, *render.PageData) {
		ctx := r.Context()
		profile, _ := p.stores.Profile.Load(ctx)
		skills, _ := p.stores.Skills.Load(ctx)
		posts, _ := p.stores.Posts.Load(ctx)

		return "home", &render.PageData{
			Title:   profile.HeroName,
			Profile: profile,
			Data: map[string]any{
				"Skills": head(skills, homeSkills),
				"Posts":  head(posts, homePosts),
			},
		}
	})
}

// Skills renders the searchable skills page. ?q= filters by name or
// description; ?focus= narrows to one skill and is ignored when nothing
// matches it.
func (p *Public) Skills(w http.ResponseWriter, r *http.Request) {
	p.cached(w, r, func() (string, *render.PageData) {
		ctx := r.Context()
		profile, _ := p.stores.Profile.Load(ctx)
		all, _ := p.stores.PageSkills.Load(ctx)

		query := trimQuery(r.URL.Query().Get("q"))
		var skills []models.Skill
		for _, s := range all {
			if s.Matches(query) {
				skills = append(skills, s)
			}
		}

		focus := trimQuery(r.URL.Query().Get("focus"))
		if focused := focusSkills(skills, focus); len(focused) > 0 {
			skills = focused
		} else {
			focus = ""
		}

		return "skills", &render.PageData{
			Title:   "Skills",
			Profile: profile,
			Data: map[string]any{
				"Query":  query,
				"Focus":  focus,
				"Skills": skills,
			},
		}
	})
}

// focusSkills keeps the skills whose slug equals focus or whose name
// contains it.
func focusSkills(skills []models.Skill, focus string) []models.Skill {
	if focus == "" {
		return nil
	}
	needle := strings.ToLower(focus)
	var out []models.Skill
	for _, s := range skills {
		if slug.Match(s.Name, focus) || strings.Contains(strings.ToLower(s.Name), needle) {
			out = append(out, s)
		}
	}
	return out
}

// Blog renders every post, newest first.
func (p *Public) Blog(w http.ResponseWriter, r *http.Request) {
	p.cached(w, r, func() (string, *render.PageData) {
		ctx := r.Context()
		profile, _ := p.stores.Profile.Load(ctx)
		posts, _ := p.stores.Posts.Load(ctx)

		return "blog", &render.PageData{
			Title:   "Blog",
			Profile: profile,
			Data:    map[string]any{"Posts": posts},
		}
	})
}

// Post renders one post with its comments. Post pages carry the visitor's
// CSRF token in the comment form, so they are never cached.
func (p *Public) Post(w http.ResponseWriter, r *http.Request) {
	p.renderPost(w, r, http.StatusOK, "", "")
}

func (p *Public) renderPost(w http.ResponseWriter, r *http.Request, status int, errMsg, draft string) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")
	profile, _ := p.stores.Profile.Load(ctx)

	post, _ := p.stores.Posts.Get(ctx, id)
	if post == nil {
		p.notFound(w, r, profile)
		return
	}
	comments, _ := p.stores.Comments.Load(ctx, post.ID)

	p.renderer.PageStatus(w, r, status, "post", &render.PageData{
		Title:   post.Title,
		Profile: profile,
		Data: map[string]any{
			"Post":     post,
			"Comments": comments,
			"Error":    errMsg,
			"Draft":    draft,
		},
	})
}

// CommentSubmit posts a comment on a post. Visitors comment anonymously;
// the signed-in owner comments under their own name.
func (p *Public) CommentSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	post, _ := p.stores.Posts.Get(ctx, id)
	if post == nil {
		profile, _ := p.stores.Profile.Load(ctx)
		p.notFound(w, r, profile)
		return
	}

	content := r.FormValue("content")
	_, res, err := p.stores.Comments.Post(ctx, post.ID, content, middleware.UserFromCtx(ctx))
	if err != nil {
		if errors.Is(err, store.ErrValidation) {
			p.renderPost(w, r, http.StatusUnprocessableEntity, err.Error(), content)
			return
		}
		slog.Error("post comment failed", "post_id", post.ID, "error", err)
		p.renderPost(w, r, http.StatusInternalServerError, "Your comment could not be saved. Please try again.", content)
		return
	}
	if !res.Local && !res.Remote {
		p.renderPost(w, r, http.StatusInternalServerError, "Your comment could not be saved. Please try again.", content)
		return
	}

	http.Redirect(w, r, "/blog/"+post.ID+"#comments", http.StatusSeeOther)
}

// NotFound renders the 404 page for unmatched routes.
func (p *Public) NotFound(w http.ResponseWriter, r *http.Request) {
	profile, _ := p.stores.Profile.Load(r.Context())
	p.notFound(w, r, profile)
}

func (p *Public) notFound(w http.ResponseWriter, r *http.Request, profile models.SiteProfile) {
	p.renderer.PageStatus(w, r, http.StatusNotFound, "error", &render.PageData{
		Title:   "Not Found",
		Profile: profile,
		Data: map[string]any{
			"Status":  http.StatusNotFound,
			"Message": "The page you're looking for doesn't exist.",
		},
	})
}

// cached serves anonymous GETs from the page cache, rendering and storing
// on a miss. Signed-in requests always render fresh.
func (p *Public) cached(w http.ResponseWriter, r *http.Request, build func() (string, *render.PageData)) {
	ctx := r.Context()
	anonymous := middleware.SessionFromCtx(ctx) == nil
	key := r.URL.Path
	if r.URL.RawQuery != "" {
		key += "?" + r.URL.RawQuery
	}

	if anonymous {
		if body, ok := p.pageCache.Get(ctx, key); ok {
			writeHTML(w, body, "HIT")
			return
		}
	}

	name, data := build()
	body, err := p.renderer.Bytes(r, name, data)
	if err != nil {
		slog.Error("render failed", "template", name, "error", err)
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}

	if anonymous {
		p.pageCache.Set(ctx, key, body)
		writeHTML(w, body, "MISS")
		return
	}
	writeHTML(w, body, "")
}

func writeHTML(w http.ResponseWriter, body []byte, cacheStatus string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if cacheStatus != "" {
		w.Header().Set("X-Cache", cacheStatus)
	}
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

// head returns at most the first n items.
func head[T any](items []T, n int) []T {
	if len(items) > n {
		return items[:n]
	}
	return items
}
