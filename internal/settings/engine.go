package settings

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
)

// Resolved is the effective value of one setting for a chain of scopes.
type Resolved struct {
	Code      int       `json:"setting_key"`
	Key       string    `json:"key"`
	Name      string    `json:"setting_key_name"`
	Value     Value     `json:"setting_value"`
	Type      ValueType `json:"value_type"`
	GroupCode int       `json:"group_code"`
	GroupName string    `json:"group"`
	IsDefault bool      `json:"is_default"`
	// Source is the scope the value came from, nil for the catalog default.
	Source *Scope `json:"-"`
}

// GroupView is the resolved members of one group.
type GroupView struct {
	Code     int        `json:"group_code"`
	Name     string     `json:"group"`
	Settings []Resolved `json:"settings"`
}

// Engine computes effective settings from the catalog and an override store.
// It holds no state besides its collaborators and caches nothing.
type Engine struct {
	catalog *Catalog
	store   Store
}

// NewEngine returns an engine backed by the built-in catalog.
func NewEngine(store Store) *Engine {
	return &Engine{catalog: defaultCatalog, store: store}
}

// NewEngineWithCatalog returns an engine backed by a custom catalog.
func NewEngineWithCatalog(catalog *Catalog, store Store) *Engine {
	return &Engine{catalog: catalog, store: store}
}

// Catalog returns the catalog the engine resolves against.
func (e *Engine) Catalog() *Catalog { return e.catalog }

// ResolveUser returns every setting as seen by a user.
func (e *Engine) ResolveUser(ctx context.Context, userID uint64) ([]Resolved, error) {
	return e.Resolve(ctx, UserChain(userID))
}

// ResolveAccount returns every setting as seen by an account of a user.
func (e *Engine) ResolveAccount(ctx context.Context, userID, accountID uint64) ([]Resolved, error) {
	return e.Resolve(ctx, AccountChain(userID, accountID))
}

// Resolve returns every setting in catalog order, taking for each one the value of the
// first scope in the chain that stores a usable override.
func (e *Engine) Resolve(ctx context.Context, chain Chain) ([]Resolved, error) {
	layers, err := e.loadLayers(ctx, chain)
	if err != nil {
		return nil, err
	}

	defs := e.catalog.Definitions()
	out := make([]Resolved, 0, len(defs))

	for _, d := range defs {
		out = append(out, e.pick(d, chain, layers))
	}

	return out, nil
}

// ResolveOne returns a single setting.
func (e *Engine) ResolveOne(ctx context.Context, chain Chain, code int) (Resolved, error) {
	d, err := e.catalog.Lookup(code)
	if err != nil {
		return Resolved{}, err
	}

	if len(chain) == 0 {
		return Resolved{}, ErrEmptyChain
	}

	layers := make([]map[int]Override, len(chain))

	for i, scope := range chain {
		o, err := e.store.Get(ctx, scope, code)
		if err != nil {
			return Resolved{}, fmt.Errorf("get override %d for %s: %w", code, scope, err)
		}

		if o != nil {
			layers[i] = map[int]Override{code: *o}
		}
	}

	return e.pick(d, chain, layers), nil
}

// ResolveGroup returns the members of one group.
func (e *Engine) ResolveGroup(ctx context.Context, chain Chain, groupCode int) (GroupView, error) {
	g, err := e.catalog.LookupGroup(groupCode)
	if err != nil {
		return GroupView{}, err
	}

	layers, err := e.loadLayers(ctx, chain)
	if err != nil {
		return GroupView{}, err
	}

	view := GroupView{Code: g.Code, Name: g.Name, Settings: make([]Resolved, 0, len(g.Definitions))}
	for _, d := range g.Definitions {
		view.Settings = append(view.Settings, e.pick(d, chain, layers))
	}

	return view, nil
}

// GroupByCategory partitions resolved settings by group. Groups follow catalog order,
// members keep their input order, and groups without members are left out.
func (e *Engine) GroupByCategory(resolved []Resolved) []GroupView {
	byGroup := make(map[int][]Resolved)
	for _, r := range resolved {
		byGroup[r.GroupCode] = append(byGroup[r.GroupCode], r)
	}

	out := make([]GroupView, 0, len(byGroup))

	for _, g := range e.catalog.Groups() {
		members, ok := byGroup[g.Code]
		if !ok {
			continue
		}

		out = append(out, GroupView{Code: g.Code, Name: g.Name, Settings: members})
	}

	return out
}

// Update stores raw as the override of code at the head of the chain and returns the
// value now effective for the chain.
func (e *Engine) Update(ctx context.Context, chain Chain, code int, raw any) (Resolved, error) {
	d, err := e.catalog.Lookup(code)
	if err != nil {
		return Resolved{}, err
	}

	head, err := chain.Head()
	if err != nil {
		return Resolved{}, err
	}

	v, err := Coerce(d.Type, raw)
	if err != nil {
		return Resolved{}, fmt.Errorf("setting %d: %w", code, err)
	}

	if _, err := e.store.Upsert(ctx, head, code, v); err != nil {
		return Resolved{}, fmt.Errorf("upsert override %d for %s: %w", code, head, err)
	}

	settingWrites.WithLabelValues("update", head.Kind.String()).Inc()

	log.Debug().
		Str("scope", head.String()).
		Int("code", code).
		Str("value", v.Encode()).
		Msg("setting override stored")

	return e.ResolveOne(ctx, chain, code)
}

// Reset removes the override of code at the head of the chain only and returns the
// value now effective, which comes from the next layer that has one.
func (e *Engine) Reset(ctx context.Context, chain Chain, code int) (Resolved, error) {
	if _, err := e.catalog.Lookup(code); err != nil {
		return Resolved{}, err
	}

	head, err := chain.Head()
	if err != nil {
		return Resolved{}, err
	}

	removed, err := e.store.Remove(ctx, head, code)
	if err != nil {
		return Resolved{}, fmt.Errorf("remove override %d for %s: %w", code, head, err)
	}

	if removed {
		settingWrites.WithLabelValues("reset", head.Kind.String()).Inc()
	}

	return e.ResolveOne(ctx, chain, code)
}

func (e *Engine) loadLayers(ctx context.Context, chain Chain) ([]map[int]Override, error) {
	if len(chain) == 0 {
		return nil, ErrEmptyChain
	}

	layers := make([]map[int]Override, len(chain))

	for i, scope := range chain {
		all, err := e.store.GetAll(ctx, scope)
		if err != nil {
			return nil, fmt.Errorf("load overrides for %s: %w", scope, err)
		}

		layers[i] = all
	}

	return layers, nil
}

// pick walks the layers in chain order and falls back to the catalog default.
func (e *Engine) pick(d *Definition, chain Chain, layers []map[int]Override) Resolved {
	r := Resolved{
		Code:      d.Code,
		Key:       d.Key,
		Name:      d.Name,
		Value:     d.Default,
		Type:      d.Type,
		GroupCode: d.GroupCode,
		IsDefault: true,
	}

	if g, err := e.catalog.LookupGroup(d.GroupCode); err == nil {
		r.GroupName = g.Name
	}

	for i, layer := range layers {
		o, ok := layer[d.Code]
		if !ok {
			continue
		}

		if o.Value.Type() != d.Type {
			staleOverrides.Inc()
			log.Warn().
				Str("scope", chain[i].String()).
				Int("code", d.Code).
				Str("stored_type", string(o.Value.Type())).
				Str("declared_type", string(d.Type)).
				Msg("skipping stale setting override")

			continue
		}

		scope := chain[i]
		r.Value = o.Value
		r.IsDefault = false
		r.Source = &scope

		break
	}

	return r
}
