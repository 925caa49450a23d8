package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"devfolio/internal/cache"
	"devfolio/internal/middleware"
	"devfolio/internal/models"
	"devfolio/internal/storage"
	"devfolio/internal/store"
)

// Admin serves the JSON API the signed-in owner edits the site through.
// Every successful write clears the page cache.
type Admin struct {
	stores    Stores
	images    *storage.Images
	pageCache *cache.PageCache
}

// NewAdmin creates the admin handler group. images and pageCache may be nil.
func NewAdmin(stores Stores, images *storage.Images, pageCache *cache.PageCache) *Admin {
	return &Admin{stores: stores, images: images, pageCache: pageCache}
}

// --- Profile ---

// ProfileGet returns the current profile.
func (a *Admin) ProfileGet(w http.ResponseWriter, r *http.Request) {
	profile, src := a.stores.Profile.Load(r.Context())
	writeJSON(w, http.StatusOK, readResponse{Data: profile, Source: src})
}

// ProfilePatch merges the supplied fields into the stored profile.
func (a *Admin) ProfilePatch(w http.ResponseWriter, r *http.Request) {
	var patch models.ProfilePatch
	if err := decodeJSON(w, r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body.")
		return
	}

	profile, res, err := a.stores.Profile.Save(r.Context(), patch, middleware.UserFromCtx(r.Context()))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	a.pageCache.InvalidateAll(r.Context())
	writeSaved(w, profile, res)
}

// ProfileReset forgets the locally stored profile so the next load falls
// back to the remote copy or the defaults.
func (a *Admin) ProfileReset(w http.ResponseWriter, r *http.Request) {
	if err := a.stores.Profile.Reset(); err != nil {
		writeStoreError(w, err)
		return
	}
	a.pageCache.InvalidateAll(r.Context())

	profile, src := a.stores.Profile.Load(r.Context())
	writeJSON(w, http.StatusOK, readResponse{Data: profile, Source: src})
}

// ProfileAvatar uploads a new avatar and saves its URL on the profile.
func (a *Admin) ProfileAvatar(w http.ResponseWriter, r *http.Request) {
	url, ok := a.uploadRequired(w, r, storage.PrefixAvatar)
	if !ok {
		return
	}

	profile, res, err := a.stores.Profile.Save(r.Context(), models.ProfilePatch{Avatar: &url}, middleware.UserFromCtx(r.Context()))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	a.pageCache.InvalidateAll(r.Context())
	writeSaved(w, profile, res)
}

// --- Skills ---

// skillStore picks the collection named by ?scope=.
func (a *Admin) skillStore(w http.ResponseWriter, r *http.Request) (*store.SkillStore, bool) {
	scope, ok := skillScope(r.URL.Query().Get("scope"))
	if !ok {
		writeError(w, http.StatusBadRequest, `scope must be "home" or "page".`)
		return nil, false
	}
	if scope == "page" {
		return a.stores.PageSkills, true
	}
	return a.stores.Skills, true
}

// SkillsList returns the skills of one collection.
func (a *Admin) SkillsList(w http.ResponseWriter, r *http.Request) {
	st, ok := a.skillStore(w, r)
	if !ok {
		return
	}
	skills, src := st.Load(r.Context())
	if skills == nil {
		skills = []models.Skill{}
	}
	writeJSON(w, http.StatusOK, readResponse{Data: skills, Source: src})
}

// SkillsReplace stores the request body as the whole collection.
func (a *Admin) SkillsReplace(w http.ResponseWriter, r *http.Request) {
	st, ok := a.skillStore(w, r)
	if !ok {
		return
	}
	var skills []models.Skill
	if err := decodeJSON(w, r, &skills); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body.")
		return
	}

	saved, res, err := st.ReplaceAll(r.Context(), skills, middleware.UserFromCtx(r.Context()))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	a.pageCache.InvalidateAll(r.Context())
	writeSaved(w, saved, res)
}

// SkillCreate adds one skill. A multipart body may carry an "image" file;
// if that upload fails the skill is still saved, without the image.
func (a *Admin) SkillCreate(w http.ResponseWriter, r *http.Request) {
	st, ok := a.skillStore(w, r)
	if !ok {
		return
	}

	var sk models.Skill
	var dropped bool
	if isMultipart(r) {
		if !parseUploadForm(w, r) {
			return
		}
		sk = models.Skill{
			Name:  r.FormValue("name"),
			Desc:  r.FormValue("desc"),
			Image: r.FormValue("image_url"),
		}
		if url, tried, err := a.uploadOptional(r, "image", storage.PrefixSkills); err == nil && tried {
			sk.Image = url
		} else if tried {
			dropped = true
		}
	} else if err := decodeJSON(w, r, &sk); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body.")
		return
	}

	saved, res, err := st.Add(r.Context(), sk, middleware.UserFromCtx(r.Context()))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	a.pageCache.InvalidateAll(r.Context())
	writeSavedWith(w, droppedResponse(saved, dropped), res)
}

// SkillUpdate replaces the skill named in the path.
func (a *Admin) SkillUpdate(w http.ResponseWriter, r *http.Request) {
	st, ok := a.skillStore(w, r)
	if !ok {
		return
	}
	var sk models.Skill
	if err := decodeJSON(w, r, &sk); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body.")
		return
	}
	sk.ID = chi.URLParam(r, "id")

	saved, res, err := st.Update(r.Context(), sk, middleware.UserFromCtx(r.Context()))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	a.pageCache.InvalidateAll(r.Context())
	writeSaved(w, saved, res)
}

// SkillDelete removes the skill named in the path. Unknown ids succeed.
func (a *Admin) SkillDelete(w http.ResponseWriter, r *http.Request) {
	st, ok := a.skillStore(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")
	res := st.Delete(r.Context(), id, middleware.UserFromCtx(r.Context()))
	a.pageCache.InvalidateAll(r.Context())
	writeSaved(w, map[string]string{"id": id}, res)
}

// --- Posts ---

// PostsList returns every post, newest first.
func (a *Admin) PostsList(w http.ResponseWriter, r *http.Request) {
	posts, src := a.stores.Posts.Load(r.Context())
	if posts == nil {
		posts = []models.BlogPost{}
	}
	writeJSON(w, http.StatusOK, readResponse{Data: posts, Source: src})
}

// PostGet returns one post.
func (a *Admin) PostGet(w http.ResponseWriter, r *http.Request) {
	post, src := a.stores.Posts.Get(r.Context(), chi.URLParam(r, "id"))
	if post == nil {
		writeError(w, http.StatusNotFound, "Not found.")
		return
	}
	writeJSON(w, http.StatusOK, readResponse{Data: post, Source: src})
}

// PostsReplace stores the request body as the whole post collection.
func (a *Admin) PostsReplace(w http.ResponseWriter, r *http.Request) {
	var posts []models.BlogPost
	if err := decodeJSON(w, r, &posts); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body.")
		return
	}

	saved, res, err := a.stores.Posts.ReplaceAll(r.Context(), posts, middleware.UserFromCtx(r.Context()))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	a.pageCache.InvalidateAll(r.Context())
	writeSaved(w, saved, res)
}

// PostCreate publishes a post. The multipart form is the quick-post path:
// title, content, optional excerpt and an optional "image" file. A failed
// image upload drops the image and keeps the post.
func (a *Admin) PostCreate(w http.ResponseWriter, r *http.Request) {
	var p models.BlogPost
	var dropped bool
	if isMultipart(r) {
		if !parseUploadForm(w, r) {
			return
		}
		p = models.BlogPost{
			Title:   r.FormValue("title"),
			Content: r.FormValue("content"),
			Excerpt: r.FormValue("excerpt"),
			Image:   r.FormValue("image_url"),
		}
		if url, tried, err := a.uploadOptional(r, "image", storage.PrefixBlog); err == nil && tried {
			p.Image = url
		} else if tried {
			dropped = true
		}
	} else if err := decodeJSON(w, r, &p); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body.")
		return
	}

	saved, res, err := a.stores.Posts.Create(r.Context(), p, middleware.UserFromCtx(r.Context()))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	a.pageCache.InvalidateAll(r.Context())

	body := droppedResponse(saved, dropped)
	body.Sync = newSyncStatus(res)
	status := http.StatusCreated
	if res.LocalErr != nil && !res.Remote {
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, body)
}

// PostUpdate replaces the post named in the path.
func (a *Admin) PostUpdate(w http.ResponseWriter, r *http.Request) {
	var p models.BlogPost
	if err := decodeJSON(w, r, &p); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body.")
		return
	}
	p.ID = chi.URLParam(r, "id")

	saved, res, err := a.stores.Posts.Update(r.Context(), p, middleware.UserFromCtx(r.Context()))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	a.pageCache.InvalidateAll(r.Context())
	writeSaved(w, saved, res)
}

// PostDelete removes the post named in the path. Unknown ids succeed.
func (a *Admin) PostDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	res := a.stores.Posts.Delete(r.Context(), id, middleware.UserFromCtx(r.Context()))
	a.pageCache.InvalidateAll(r.Context())
	writeSaved(w, map[string]string{"id": id}, res)
}

func droppedResponse(data any, dropped bool) writeResponse {
	body := writeResponse{Data: data}
	if dropped {
		body.ImageDropped = true
		body.Notice = "The image could not be uploaded and was left out. Everything else was saved."
	}
	return body
}

func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data")
}
