package main

import (
	"bytes"
	"errors"
	"net/http"

	"go-live-preview/internal/block"
	"go-live-preview/pkg/fsutils"

	"github.com/go-chi/chi/v5"
)

// BlockFormPageData holds the page-specific data of block_form.html.
type BlockFormPageData struct {
	BlockID    string
	Form       *block.ConfigForm
	Saved      bool
	Error      string
	ErrorField string
}

// dashboardHandler sends the admin to the configured block's form.
func (app *adminApplication) dashboardHandler(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/admin/block/"+app.site.Config.BlockID, http.StatusSeeOther)
}

// configBlock creates a block for the configuration form of blockID.
func (app *adminApplication) configBlock(r *http.Request, blockID string) (*block.Block, error) {
	cfg, err := app.site.Blocks.LoadBlockConfig(r.Context(), blockID)
	if err != nil {
		return nil, err
	}
	deps := app.site.BlockDeps()
	deps.BlockID = blockID
	return block.New(r.Context(), deps, cfg, block.NoContext()), nil
}

func (app *adminApplication) blockID(w http.ResponseWriter, r *http.Request) (string, bool) {
	blockID := chi.URLParam(r, "blockID")
	if blockID == "" || fsutils.SanitizeFilename(blockID) != blockID {
		http.Error(w, "Bad Request - Invalid block ID", http.StatusBadRequest)
		return "", false
	}
	return blockID, true
}

// blockFormHandler displays the block configuration form.
func (app *adminApplication) blockFormHandler(w http.ResponseWriter, r *http.Request) {
	blockID, ok := app.blockID(w, r)
	if !ok {
		return
	}
	b, err := app.configBlock(r, blockID)
	if err != nil {
		app.logger.Error("Failed to load block configuration", "block", blockID, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	page := &BlockFormPageData{BlockID: blockID, Saved: r.URL.Query().Get("saved") == "1"}
	app.renderBlockForm(w, r, http.StatusOK, b, page)
}

// blockSubmitHandler validates and saves the block configuration.
func (app *adminApplication) blockSubmitHandler(w http.ResponseWriter, r *http.Request) {
	blockID, ok := app.blockID(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		app.logger.Error("Failed to parse block form", "error", err)
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	b, err := app.configBlock(r, blockID)
	if err != nil {
		app.logger.Error("Failed to load block configuration", "block", blockID, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	_, err = b.Submit(r.Context(), r.PostForm)
	var submitErr *block.SubmitError
	switch {
	case errors.As(err, &submitErr):
		app.logger.Info("Rejected block configuration", "block", blockID, "field", submitErr.Field, "error", submitErr.Message)
		page := &BlockFormPageData{BlockID: blockID, Error: submitErr.Error(), ErrorField: submitErr.Field}
		app.renderBlockForm(w, r, http.StatusUnprocessableEntity, b, page)
		return
	case err != nil:
		app.logger.Error("Failed to save block configuration", "block", blockID, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/admin/block/"+blockID+"?saved=1", http.StatusSeeOther)
}

// blockResetHandler removes the block configuration, returning the block to
// the placeholder on every add form and the full view mode.
func (app *adminApplication) blockResetHandler(w http.ResponseWriter, r *http.Request) {
	blockID, ok := app.blockID(w, r)
	if !ok {
		return
	}
	if err := app.site.Blocks.DeleteBlockConfig(r.Context(), blockID); err != nil {
		app.logger.Error("Failed to reset block configuration", "block", blockID, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	app.logger.Info("Block configuration reset", "block", blockID)
	http.Redirect(w, r, "/admin/block/"+blockID, http.StatusSeeOther)
}

func (app *adminApplication) renderBlockForm(w http.ResponseWriter, r *http.Request, status int, b *block.Block, page *BlockFormPageData) {
	f, err := b.Form(r.Context())
	if err != nil {
		app.logger.Error("Failed to build block form", "block", page.BlockID, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	page.Form = f

	data := app.newTemplateData(r, "block")
	data["Page"] = page

	ts, ok := app.templateCache["block_form.html"]
	if !ok {
		app.logger.Error("Template block_form.html not found in cache")
		http.Error(w, "Internal Server Error - Template not found", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := ts.ExecuteTemplate(&buf, "layout.html", data); err != nil {
		app.logger.Error("Error executing admin layout template", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}
