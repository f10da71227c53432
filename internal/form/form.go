// Package form drives the create/edit/delete dialogs of a panel. A draft is
// kept apart from the cached record until the server accepts it.
package form

import (
	"context"
	"fmt"

	"rpgpanel/internal/client"
	"rpgpanel/internal/config"
	apperrors "rpgpanel/internal/errors"
	"rpgpanel/internal/resource"
)

type Mode int

const (
	ModeClosed Mode = iota
	ModeCreate
	ModeEdit
)

func (m Mode) String() string {
	switch m {
	case ModeCreate:
		return "create"
	case ModeEdit:
		return "edit"
	default:
		return "closed"
	}
}

// API is the subset of the HTTP client the form writes through.
type API interface {
	Post(ctx context.Context, path string, body any) (*client.Response, error)
	Put(ctx context.Context, path string, body any) (*client.Response, error)
	Delete(ctx context.Context, path string) (*client.Response, error)
}

// Source looks up cached records for edit forms.
type Source interface {
	Get(id string) (resource.Record, bool)
}

// Confirmer asks the user to approve a destructive action.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, prompt string) (bool, error)

func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) (bool, error) {
	return f(ctx, prompt)
}

// Always approves without asking; used by --yes.
var Always Confirmer = ConfirmFunc(func(context.Context, string) (bool, error) { return true, nil })

// Draft is the pending state of an open form.
type Draft struct {
	Values   resource.Record
	IDLocked bool
}

// Controller is not safe for concurrent use; the owning panel serializes
// access.
type Controller struct {
	panel  *config.Panel
	api    API
	source Source

	mode  Mode
	draft Draft
}

func New(panel *config.Panel, api API, source Source) *Controller {
	return &Controller{panel: panel, api: api, source: source}
}

func (c *Controller) Mode() Mode { return c.mode }

// Draft returns a copy of the current draft.
func (c *Controller) Draft() Draft {
	return Draft{Values: c.draft.Values.Clone(), IDLocked: c.draft.IDLocked}
}

// OpenForCreate resets every declared field to its default and leaves the
// identifier editable.
func (c *Controller) OpenForCreate() error {
	if c.panel.ReadOnly {
		return apperrors.Validation("", fmt.Sprintf("panel %s is read-only", c.panel.Name))
	}
	values := resource.Record{}
	for _, field := range c.panel.Fields {
		values[field.Name] = DefaultValue(field)
	}
	if _, ok := values[c.panel.IDField]; !ok {
		values[c.panel.IDField] = ""
	}
	c.mode = ModeCreate
	c.draft = Draft{Values: values}
	return nil
}

// OpenForEdit loads a deep copy of the cached record and locks its id.
func (c *Controller) OpenForEdit(id string) error {
	if c.panel.ReadOnly {
		return apperrors.Validation("", fmt.Sprintf("panel %s is read-only", c.panel.Name))
	}
	record, ok := c.source.Get(id)
	if !ok {
		return apperrors.NotFound(id)
	}
	c.mode = ModeEdit
	c.draft = Draft{Values: record.Clone(), IDLocked: true}
	return nil
}

// Cancel discards the draft and closes the form.
func (c *Controller) Cancel() {
	c.mode = ModeClosed
	c.draft = Draft{}
}

// Set assigns text input to a top-level field, coerced by its declared
// type. Undeclared fields are stored as strings.
func (c *Controller) Set(name, raw string) error {
	if err := c.requireOpen(); err != nil {
		return err
	}
	field, ok := c.panel.FieldByName(name)
	if !ok {
		field = &config.Field{Name: name, Type: config.FieldString}
	}
	value, err := Coerce(*field, raw)
	if err != nil {
		return err
	}
	return c.assign(name, value)
}

// Fill copies typed values (as decoded from JSON or YAML) into the draft.
func (c *Controller) Fill(values resource.Record) error {
	if err := c.requireOpen(); err != nil {
		return err
	}
	for _, name := range values.Keys() {
		value := resource.CloneValue(values[name])
		if field, ok := c.panel.FieldByName(name); ok {
			conformed, err := conform(*field, value)
			if err != nil {
				return err
			}
			value = conformed
		}
		if err := c.assign(name, value); err != nil {
			return err
		}
	}
	return nil
}

func (c *Controller) assign(name string, value any) error {
	if name == c.panel.IDField && c.draft.IDLocked {
		if resource.FormatValue(value) != c.draft.Values.ID(name) {
			return apperrors.Validation(name, fmt.Sprintf("%s cannot change after creation", name))
		}
		return nil
	}
	c.draft.Values[name] = value
	return nil
}

// AddItem appends a defaulted entry to a group field and returns its index.
func (c *Controller) AddItem(name string) (int, error) {
	group, items, err := c.group(name)
	if err != nil {
		return 0, err
	}
	item := map[string]any{}
	for _, sub := range group.Fields {
		item[sub.Name] = DefaultValue(sub)
	}
	c.draft.Values[name] = append(items, item)
	return len(items), nil
}

// SetItem assigns text input to one sub-field of a group entry.
func (c *Controller) SetItem(name string, index int, subName, raw string) error {
	group, items, err := c.group(name)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(items) {
		return apperrors.Validation(name, fmt.Sprintf("%s has no item %d", name, index))
	}
	sub, ok := group.SubField(subName)
	if !ok {
		return apperrors.Validation(name, fmt.Sprintf("%s has no field %s", name, subName))
	}
	value, err := Coerce(*sub, raw)
	if err != nil {
		return err
	}
	item, ok := items[index].(map[string]any)
	if !ok {
		item = map[string]any{}
		items[index] = item
	}
	item[subName] = value
	return nil
}

// RemoveItem drops one entry of a group field, keeping the others' order.
func (c *Controller) RemoveItem(name string, index int) error {
	_, items, err := c.group(name)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(items) {
		return apperrors.Validation(name, fmt.Sprintf("%s has no item %d", name, index))
	}
	next := make([]any, 0, len(items)-1)
	next = append(next, items[:index]...)
	next = append(next, items[index+1:]...)
	c.draft.Values[name] = next
	return nil
}

func (c *Controller) group(name string) (*config.Field, []any, error) {
	if err := c.requireOpen(); err != nil {
		return nil, nil, err
	}
	field, ok := c.panel.FieldByName(name)
	if !ok || field.Type != config.FieldGroup {
		return nil, nil, apperrors.Validation(name, fmt.Sprintf("%s is not a group field", name))
	}
	items, _ := c.draft.Values[name].([]any)
	return field, items, nil
}

// CollectDraft returns the record that Submit would send.
func (c *Controller) CollectDraft() resource.Record {
	return c.draft.Values.Clone()
}

// Validate checks the draft for missing identifier and required values,
// including required sub-fields of group entries.
func (c *Controller) Validate() error {
	if err := c.requireOpen(); err != nil {
		return err
	}
	values := c.draft.Values
	if isBlank(values[c.panel.IDField]) {
		return apperrors.Validation(c.panel.IDField, fmt.Sprintf("%s is required", c.panel.IDField))
	}
	for _, field := range c.panel.Fields {
		if field.Required && isBlank(values[field.Name]) {
			return apperrors.Validation(field.Name, fmt.Sprintf("%s is required", field.Name))
		}
		if field.Type != config.FieldGroup {
			continue
		}
		items, _ := values[field.Name].([]any)
		for i, raw := range items {
			item, _ := raw.(map[string]any)
			for _, sub := range field.Fields {
				if sub.Required && isBlank(item[sub.Name]) {
					return apperrors.Validation(field.Name, fmt.Sprintf("%s[%d].%s is required", field.Name, i, sub.Name))
				}
			}
		}
	}
	return nil
}

// Submit validates the draft and sends it: POST for create, PUT for edit.
// The form closes only when the server accepts the record; on any error
// the draft stays as it was.
func (c *Controller) Submit(ctx context.Context) (resource.Record, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	payload := c.CollectDraft()

	var (
		resp *client.Response
		err  error
	)
	switch c.mode {
	case ModeCreate:
		resp, err = c.api.Post(ctx, c.panel.Endpoints.Create, payload)
	case ModeEdit:
		path := c.panel.Path(c.panel.Endpoints.Update, payload.ID(c.panel.IDField))
		resp, err = c.api.Put(ctx, path, payload)
	}
	if err != nil {
		return nil, err
	}
	if _, err := resp.Unwrap(c.panel.Envelope); err != nil {
		return nil, err
	}

	c.Cancel()
	return payload, nil
}

// Delete asks confirm before issuing DELETE for id. A declined
// confirmation returns false without any request.
func (c *Controller) Delete(ctx context.Context, id string, confirm Confirmer) (bool, error) {
	if c.panel.ReadOnly || c.panel.Endpoints.Delete == "" {
		return false, apperrors.Validation("", fmt.Sprintf("panel %s is read-only", c.panel.Name))
	}
	if id == "" {
		return false, apperrors.Validation(c.panel.IDField, "an id is required")
	}
	if confirm == nil {
		return false, apperrors.Validation("", "delete needs confirmation")
	}
	ok, err := confirm.Confirm(ctx, fmt.Sprintf("Delete %s %q?", c.panel.Title, id))
	if err != nil {
		return false, fmt.Errorf("confirming delete: %w", err)
	}
	if !ok {
		return false, nil
	}

	resp, err := c.api.Delete(ctx, c.panel.Path(c.panel.Endpoints.Delete, id))
	if err != nil {
		return false, err
	}
	if _, err := resp.Unwrap(c.panel.Envelope); err != nil {
		return false, err
	}
	return true, nil
}

func (c *Controller) requireOpen() error {
	if c.mode == ModeClosed {
		return apperrors.Validation("", "no form is open")
	}
	return nil
}
