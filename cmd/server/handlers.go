package main

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"sort"
	"strconv"

	"go-live-preview/internal/block"
	"go-live-preview/internal/form"
	"go-live-preview/internal/linktarget"
	"go-live-preview/internal/model"
	"go-live-preview/internal/preview"
	"go-live-preview/internal/render"
	"go-live-preview/internal/storage"

	"github.com/go-chi/chi/v5"
)

// pageData is passed to layout.html and the page templates.
type pageData struct {
	Title        string
	ContentTypes []*model.ContentType
	Styles       []string
	Scripts      []string
	Block        template.HTML
	Nodes        []*model.Entity
	Node         *model.Entity
	NodeHTML     template.HTML
	Form         *nodeForm
}

// nodeForm is the view model of the node add/edit form.
type nodeForm struct {
	BuildID    string
	TypeID     string
	TypeLabel  string
	NodeID     int64
	IsNew      bool
	Title      string
	TitleError string
	Fields     []formField
	Actions    []form.Action
	Errors     []form.FieldError
}

type formField struct {
	Name     string
	Label    string
	Type     string
	Required bool
	Value    string
	Error    string
	Widget   string // inline widget ID for reference fields
	Options  []formOption
}

type formOption struct {
	Value    string
	Label    string
	Selected bool
}

func (app *application) render(w http.ResponseWriter, status int, page string, data *pageData) {
	ts, ok := app.templateCache[page]
	if !ok {
		app.logger.Error("Template not found in cache", "template", page)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := ts.ExecuteTemplate(&buf, "layout", data); err != nil {
		app.logger.Error("Error executing template", "template", page, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// newPageData renders the display block for rc and collects page assets.
func (app *application) newPageData(r *http.Request, title string, rc block.ResolutionContext) (*pageData, error) {
	b := app.site.Block(r.Context(), rc)
	build, err := b.Build(r.Context())
	if err != nil {
		return nil, err
	}
	blockHTML, err := app.normalizeLinks(build.HTML())
	if err != nil {
		return nil, err
	}

	libraries := append([]string{render.PreviewLibrary}, build.Libraries...)
	return &pageData{
		Title:        title,
		ContentTypes: app.site.Types.ContentTypes(),
		Styles:       app.site.Libraries.Styles(libraries),
		Scripts:      app.site.Libraries.Scripts(libraries),
		Block:        blockHTML,
	}, nil
}

func (app *application) normalizeLinks(markup template.HTML) (template.HTML, error) {
	if !app.site.Config.ServerSideLinks {
		return markup, nil
	}
	out, err := linktarget.NormalizeFragment(string(markup))
	if err != nil {
		return "", err
	}
	return template.HTML(out), nil
}

func (app *application) clientScriptHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
	w.Write(linktarget.Script())
}

func (app *application) homeHandler(w http.ResponseWriter, r *http.Request) {
	nodes, err := app.site.Nodes.List(r.Context())
	if err != nil {
		app.logger.Error("Failed to list nodes", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	data, err := app.newPageData(r, "Content", block.NoContext())
	if err != nil {
		app.logger.Error("Failed to build page", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	data.Nodes = nodes
	app.render(w, http.StatusOK, "home.html", data)
}

// loadNode loads the node named by the {nodeID} URL parameter, answering 404 itself.
func (app *application) loadNode(w http.ResponseWriter, r *http.Request) (*model.Entity, bool) {
	id, err := storage.ParseEntityID(chi.URLParam(r, "nodeID"))
	if err != nil {
		http.NotFound(w, r)
		return nil, false
	}
	node, err := app.site.Nodes.Load(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		http.NotFound(w, r)
		return nil, false
	}
	if err != nil {
		app.logger.Error("Failed to load node", "nid", id, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return nil, false
	}
	return node, true
}

func (app *application) nodeViewHandler(w http.ResponseWriter, r *http.Request) {
	node, ok := app.loadNode(w, r)
	if !ok {
		return
	}
	build, err := app.site.Views.View(r.Context(), node, model.ViewModeFull)
	if err != nil {
		app.logger.Error("Failed to render node", "nid", node.ID, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	nodeHTML, err := app.normalizeLinks(build.Markup)
	if err != nil {
		app.logger.Error("Failed to normalize node links", "nid", node.ID, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	data, err := app.newPageData(r, node.Title, block.ViewingEntity(node))
	if err != nil {
		app.logger.Error("Failed to build page", "nid", node.ID, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	data.Node = node
	data.NodeHTML = nodeHTML
	app.render(w, http.StatusOK, "node_page.html", data)
}

func (app *application) nodeAddHandler(w http.ResponseWriter, r *http.Request) {
	ct, ok := app.site.Types.ContentType(chi.URLParam(r, "type"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	state := form.NewState(ct, nil)
	app.renderForm(w, r, http.StatusOK, state, model.NewEntity(ct), block.CreatingType(ct.ID))
}

func (app *application) nodeEditHandler(w http.ResponseWriter, r *http.Request) {
	node, ok := app.loadNode(w, r)
	if !ok {
		return
	}
	ct, ok := app.site.Types.ContentType(node.Type)
	if !ok {
		app.logger.Error("Node has an unknown content type", "nid", node.ID, "type", node.Type)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	state := form.NewState(ct, node)
	app.renderForm(w, r, http.StatusOK, state, node, block.ViewingEntity(node))
}

func (app *application) renderForm(w http.ResponseWriter, r *http.Request, status int, state *form.State, entity *model.Entity, rc block.ResolutionContext) {
	f, err := app.buildNodeForm(r, state, entity)
	if err != nil {
		app.logger.Error("Failed to build node form", "type", state.ContentType.ID, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	title := "Create " + state.ContentType.Label
	if !entity.IsNew() {
		title = "Edit " + entity.Title
	}
	data, err := app.newPageData(r, title, rc)
	if err != nil {
		app.logger.Error("Failed to build page", "type", state.ContentType.ID, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	data.Form = f
	app.render(w, status, "node_form.html", data)
}

// buildNodeForm fills the form from the submitted values when there are any,
// otherwise from entity.
func (app *application) buildNodeForm(r *http.Request, state *form.State, entity *model.Entity) (*nodeForm, error) {
	ct := state.ContentType
	submitted := len(state.Values) > 0

	f := &nodeForm{
		BuildID:    state.BuildID,
		TypeID:     ct.ID,
		TypeLabel:  ct.Label,
		NodeID:     entity.ID,
		IsNew:      entity.IsNew(),
		Title:      entity.Title,
		TitleError: state.ErrorFor(form.KeyTitle),
		Actions:    app.site.Preview.Actions(state),
		Errors:     state.Errors(),
	}
	if submitted {
		f.Title = state.Values.Get(form.KeyTitle)
	}

	var candidates []*model.Entity
	for _, def := range ct.Fields {
		if def.IsEntityReference() {
			nodes, err := app.site.Nodes.List(r.Context())
			if err != nil {
				return nil, err
			}
			candidates = nodes
			break
		}
	}

	for _, def := range ct.Fields {
		ff := formField{
			Name:     def.Name,
			Label:    def.Label,
			Type:     def.Type,
			Required: def.Required,
			Error:    state.ErrorFor(def.Name),
		}
		field := entity.Field(def.Name)

		if !def.IsEntityReference() {
			switch {
			case submitted:
				ff.Value = state.Values.Get(def.Name)
			case field != nil && len(field.Items) > 0:
				ff.Value = field.Items[0].Value
			}
			f.Fields = append(f.Fields, ff)
			continue
		}

		ff.Widget = def.Name
		selected := map[int64]bool{}
		if submitted {
			for _, e := range form.WidgetEntitiesFor(state.InlineEntityForm, def.Name) {
				selected[e.ID] = true
			}
		} else if field != nil {
			for _, item := range field.Items {
				selected[item.TargetID] = true
			}
		}
		for _, n := range candidates {
			if n.ID == entity.ID {
				continue
			}
			ff.Options = append(ff.Options, formOption{
				Value:    strconv.FormatInt(n.ID, 10),
				Label:    fmt.Sprintf("%s (%s)", n.Title, n.Type),
				Selected: selected[n.ID],
			})
		}
		sort.SliceStable(ff.Options, func(i, j int) bool { return ff.Options[i].Label < ff.Options[j].Label })
		f.Fields = append(f.Fields, ff)
	}
	return f, nil
}

// nodeFormSubmitHandler handles both buttons of the node form. Preview answers
// with a Patch Response; Save validates, checks submit access and stores the node.
func (app *application) nodeFormSubmitHandler(w http.ResponseWriter, r *http.Request) {
	state, err := form.ParseRequest(r, app.site.Types, app.site.Nodes)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			http.NotFound(w, r)
		default:
			app.logger.Warn("Rejected node form submission", "error", err)
			http.Error(w, "Bad Request", http.StatusBadRequest)
		}
		return
	}
	state.HasBeenPreviewed = app.site.Forms.Previewed(state.BuildID)

	if state.IsPreview() {
		app.previewSubmit(w, r, state)
		return
	}
	app.saveSubmit(w, r, state)
}

func (app *application) previewSubmit(w http.ResponseWriter, r *http.Request, state *form.State) {
	app.site.Preview.Validate(state)

	resp, err := app.site.Preview.RenderLivePreview(r.Context(), state)
	if err != nil {
		app.logger.Error("Live preview failed", "type", state.ContentType.ID, "build_id", state.BuildID, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	app.site.Forms.MarkPreviewed(state.BuildID)

	if err := resp.Write(w); err != nil {
		app.logger.Error("Failed to write preview response", "error", err)
	}
}

func (app *application) saveSubmit(w http.ResponseWriter, r *http.Request, state *form.State) {
	ctx := r.Context()

	app.site.Preview.Validate(state)
	if state.HasErrors() {
		entity := state.Base
		if entity == nil {
			entity = model.NewEntity(state.ContentType)
		}
		rc := block.CreatingType(state.ContentType.ID)
		if !entity.IsNew() {
			rc = block.ViewingEntity(entity)
		}
		app.renderForm(w, r, http.StatusUnprocessableEntity, state, entity, rc)
		return
	}

	if !app.site.Preview.SubmitAccess(state) {
		app.logger.Info("Save refused until the form is previewed", "type", state.ContentType.ID, "build_id", state.BuildID)
		http.Error(w, "Forbidden: preview this content before saving", http.StatusForbidden)
		return
	}

	entity, err := app.site.Binder.BuildEntity(ctx, state)
	if err != nil {
		app.logger.Error("Failed to build node from form", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	// Inline widgets own their fields on save as well, including emptying them.
	preview.ReconcileInlineEntitiesOnSave(entity, state.InlineEntityForm)

	if err := app.site.Nodes.Save(ctx, entity); err != nil {
		app.logger.Error("Failed to save node", "type", entity.Type, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	app.site.Forms.Forget(state.BuildID)
	app.logger.Info("Node saved", "nid", entity.ID, "type", entity.Type)

	http.Redirect(w, r, fmt.Sprintf("/node/%d", entity.ID), http.StatusSeeOther)
}
