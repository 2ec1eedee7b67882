package service

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"insightval/internal/apperr"
	"insightval/internal/models"
	"insightval/internal/repository"
	"insightval/internal/valuation"
)

// MethodService is the valuation method registry.
type MethodService struct {
	Repo   repository.ValuationRepository
	Logger *zap.Logger
}

// MethodDetail is a method with all of its versions, oldest first.
type MethodDetail struct {
	Method   models.ValuationMethod          `json:"method"`
	Versions []models.ValuationMethodVersion `json:"versions"`
	// Preferred is the version used when no date is given.
	Preferred *models.ValuationMethodVersion `json:"preferred"`
}

type MethodInput struct {
	MethodKey   string   `json:"method_key"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	AssetScope  []string `json:"asset_scope"`
	Status      string   `json:"status"`
}

type VersionInput struct {
	FormulaID     string          `json:"formula_id"`
	Graph         json.RawMessage `json:"graph"`
	ParamsSchema  json.RawMessage `json:"params_schema"`
	MetricSchema  json.RawMessage `json:"metric_schema"`
	EffectiveFrom *string         `json:"effective_from"`
	EffectiveTo   *string         `json:"effective_to"`
	Notes         string          `json:"notes"`
	Activate      bool            `json:"activate"`
}

type CreateMethodInput struct {
	MethodInput
	Version VersionInput `json:"version"`
}

type CloneMethodInput struct {
	MethodKey   string `json:"method_key"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// EnsureBuiltins seeds missing built-in methods with version 1. Existing rows
// are left alone.
func (s *MethodService) EnsureBuiltins(ctx context.Context) error {
	if s == nil || s.Repo == nil {
		return nil
	}
	for _, def := range valuation.BuiltinMethods() {
		existing, err := s.Repo.GetMethodByKey(ctx, def.Key)
		if err != nil {
			return err
		}
		if existing != nil {
			continue
		}
		graph, _ := json.Marshal(def.Graph)
		params, _ := json.Marshal(def.ParamsSchema)
		schema, _ := json.Marshal(def.MetricSchema())
		scope, _ := json.Marshal(def.AssetScope)
		method := &models.ValuationMethod{
			MethodKey:   def.Key,
			Name:        def.Name,
			Description: def.Description,
			IsBuiltin:   true,
			Status:      models.MethodStatusActive,
			AssetScope:  datatypes.JSON(scope),
		}
		version := &models.ValuationMethodVersion{
			Version:      1,
			Graph:        datatypes.JSON(graph),
			ParamsSchema: datatypes.JSON(params),
			MetricSchema: datatypes.JSON(schema),
			FormulaID:    def.FormulaID,
			Notes:        "built-in",
		}
		if err := s.createWithVersion(ctx, method, version); err != nil {
			return err
		}
		if s.Logger != nil {
			s.Logger.Info("built-in valuation method seeded", zap.String("method", def.Key))
		}
	}
	return nil
}

func (s *MethodService) List(ctx context.Context, status *string) ([]models.ValuationMethod, error) {
	if s == nil || s.Repo == nil {
		return nil, nil
	}
	if status != nil {
		v := strings.ToLower(strings.TrimSpace(*status))
		if v != "" && v != models.MethodStatusActive && v != models.MethodStatusArchived {
			return nil, apperr.Validation("unknown method status %q", *status)
		}
		status = &v
	}
	return s.Repo.ListMethods(ctx, repository.ListMethodsParams{Status: status})
}

// Resolve returns the method and its versions, or a not-found error.
func (s *MethodService) Resolve(ctx context.Context, key string) (*models.ValuationMethod, []models.ValuationMethodVersion, error) {
	if s == nil || s.Repo == nil {
		return nil, nil, nil
	}
	key = strings.ToLower(strings.TrimSpace(key))
	if key == "" {
		return nil, nil, apperr.Validation("method key is required")
	}
	method, err := s.Repo.GetMethodByKey(ctx, key)
	if err != nil {
		return nil, nil, err
	}
	if method == nil {
		return nil, nil, apperr.NotFound("valuation method %s not found", key)
	}
	versions, err := s.Repo.ListMethodVersions(ctx, method.ID)
	if err != nil {
		return nil, nil, err
	}
	return method, versions, nil
}

func (s *MethodService) Get(ctx context.Context, key string) (*MethodDetail, error) {
	method, versions, err := s.Resolve(ctx, key)
	if err != nil || method == nil {
		return nil, err
	}
	return &MethodDetail{
		Method:    *method,
		Versions:  versions,
		Preferred: valuation.PickVersion(method, versions, nil),
	}, nil
}

// Create registers a custom method with its first version, which becomes active.
func (s *MethodService) Create(ctx context.Context, in CreateMethodInput) (*MethodDetail, error) {
	if s == nil || s.Repo == nil {
		return nil, nil
	}
	key := strings.TrimSpace(in.MethodKey)
	if !valuation.IsValidMethodKey(key) {
		return nil, apperr.Validation("invalid method key %q", in.MethodKey)
	}
	if err := s.ensureKeyFree(ctx, key); err != nil {
		return nil, err
	}
	method := &models.ValuationMethod{MethodKey: key, Status: models.MethodStatusActive}
	if err := applyMethodInput(method, in.MethodInput); err != nil {
		return nil, err
	}
	version, err := buildVersion(in.Version, nil)
	if err != nil {
		return nil, err
	}
	version.Version = 1
	if err := s.createWithVersion(ctx, method, version); err != nil {
		return nil, err
	}
	if s.Logger != nil {
		s.Logger.Info("valuation method created", zap.String("method", key), zap.String("formula", version.FormulaID))
	}
	return s.Get(ctx, key)
}

// Update edits name, description, asset scope and status of a custom method.
// The key itself is immutable.
func (s *MethodService) Update(ctx context.Context, key string, in MethodInput) (*MethodDetail, error) {
	method, _, err := s.Resolve(ctx, key)
	if err != nil || method == nil {
		return nil, err
	}
	if method.IsBuiltin {
		return nil, apperr.Invariant("built-in method %s cannot be edited; clone it first", method.MethodKey)
	}
	if k := strings.TrimSpace(in.MethodKey); k != "" && k != method.MethodKey {
		return nil, apperr.Invariant("method key %s is immutable", method.MethodKey)
	}
	if err := applyMethodInput(method, in); err != nil {
		return nil, err
	}
	if err := s.Repo.SaveMethodTx(ctx, nil, method); err != nil {
		return nil, err
	}
	return s.Get(ctx, method.MethodKey)
}

// Clone copies a built-in method's preferred version into a new custom
// method as its version 1.
func (s *MethodService) Clone(ctx context.Context, sourceKey string, in CloneMethodInput) (*MethodDetail, error) {
	source, versions, err := s.Resolve(ctx, sourceKey)
	if err != nil || source == nil {
		return nil, err
	}
	if !source.IsBuiltin {
		return nil, apperr.Invariant("only built-in methods can be cloned, %s is custom", source.MethodKey)
	}
	template := valuation.PickVersion(source, versions, nil)
	if template == nil {
		return nil, apperr.Invariant("built-in method %s has no version to clone", source.MethodKey)
	}
	key := strings.TrimSpace(in.MethodKey)
	if !valuation.IsValidMethodKey(key) {
		return nil, apperr.Validation("invalid method key %q", in.MethodKey)
	}
	if err := s.ensureKeyFree(ctx, key); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = source.Name + " (custom)"
	}
	description := strings.TrimSpace(in.Description)
	if description == "" {
		description = source.Description
	}
	from := source.MethodKey
	method := &models.ValuationMethod{
		MethodKey:   key,
		Name:        name,
		Description: description,
		Status:      models.MethodStatusActive,
		AssetScope:  cloneJSON(source.AssetScope),
		ClonedFrom:  &from,
	}
	version := &models.ValuationMethodVersion{
		Version:      1,
		Graph:        cloneJSON(template.Graph),
		ParamsSchema: cloneJSON(template.ParamsSchema),
		MetricSchema: cloneJSON(template.MetricSchema),
		FormulaID:    template.FormulaID,
		Notes:        "cloned from " + source.MethodKey,
	}
	if err := s.createWithVersion(ctx, method, version); err != nil {
		return nil, err
	}
	if s.Logger != nil {
		s.Logger.Info("valuation method cloned", zap.String("source", source.MethodKey), zap.String("method", key))
	}
	return s.Get(ctx, key)
}

// PublishVersion appends max(version)+1 to a custom method. Omitted graph and
// schemas are carried over from the preferred version.
func (s *MethodService) PublishVersion(ctx context.Context, key string, in VersionInput) (*models.ValuationMethodVersion, error) {
	method, versions, err := s.Resolve(ctx, key)
	if err != nil || method == nil {
		return nil, err
	}
	if method.IsBuiltin {
		return nil, apperr.Invariant("cannot publish a version of built-in method %s; clone it first", method.MethodKey)
	}
	version, err := buildVersion(in, valuation.PickVersion(method, versions, nil))
	if err != nil {
		return nil, err
	}
	version.MethodID = method.ID

	err = s.Repo.InTx(ctx, func(tx *gorm.DB) error {
		current, err := s.Repo.MaxMethodVersionTx(ctx, tx, method.ID)
		if err != nil {
			return err
		}
		version.Version = current + 1
		if err := s.Repo.CreateMethodVersionTx(ctx, tx, version); err != nil {
			return err
		}
		if in.Activate {
			method.ActiveVersionID = &version.ID
			return s.Repo.SaveMethodTx(ctx, tx, method)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if s.Logger != nil {
		s.Logger.Info("valuation method version published",
			zap.String("method", method.MethodKey),
			zap.Int("version", version.Version),
			zap.String("formula", version.FormulaID),
			zap.Bool("activate", in.Activate),
		)
	}
	return version, nil
}

// SetActiveVersion records versionID as the method's fallback version.
func (s *MethodService) SetActiveVersion(ctx context.Context, key string, versionID uint64) (*MethodDetail, error) {
	method, versions, err := s.Resolve(ctx, key)
	if err != nil || method == nil {
		return nil, err
	}
	if method.IsBuiltin {
		return nil, apperr.Invariant("built-in method %s cannot be edited; clone it first", method.MethodKey)
	}
	owned := false
	for _, v := range versions {
		if v.ID == versionID {
			owned = true
			break
		}
	}
	if !owned {
		return nil, apperr.Invariant("version %d does not belong to method %s", versionID, method.MethodKey)
	}
	method.ActiveVersionID = &versionID
	if err := s.Repo.SaveMethodTx(ctx, nil, method); err != nil {
		return nil, err
	}
	return s.Get(ctx, method.MethodKey)
}

func (s *MethodService) createWithVersion(ctx context.Context, method *models.ValuationMethod, version *models.ValuationMethodVersion) error {
	return s.Repo.InTx(ctx, func(tx *gorm.DB) error {
		if err := s.Repo.CreateMethodTx(ctx, tx, method); err != nil {
			return err
		}
		version.MethodID = method.ID
		if err := s.Repo.CreateMethodVersionTx(ctx, tx, version); err != nil {
			return err
		}
		method.ActiveVersionID = &version.ID
		return s.Repo.SaveMethodTx(ctx, tx, method)
	})
}

func (s *MethodService) ensureKeyFree(ctx context.Context, key string) error {
	existing, err := s.Repo.GetMethodByKey(ctx, key)
	if err != nil {
		return err
	}
	if existing != nil {
		return apperr.Invariant("valuation method %s already exists", key)
	}
	return nil
}

func applyMethodInput(method *models.ValuationMethod, in MethodInput) error {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return apperr.Validation("method name is required")
	}
	if len(name) > 120 {
		return apperr.Validation("method name longer than 120 characters")
	}
	status := strings.ToLower(strings.TrimSpace(in.Status))
	if status == "" {
		status = method.Status
	}
	if status != models.MethodStatusActive && status != models.MethodStatusArchived {
		return apperr.Validation("unknown method status %q", in.Status)
	}
	scope := make([]string, 0, len(in.AssetScope))
	for _, d := range in.AssetScope {
		d = strings.ToLower(strings.TrimSpace(d))
		if d != "" {
			scope = append(scope, d)
		}
	}
	raw, _ := json.Marshal(scope)

	method.Name = name
	method.Description = strings.TrimSpace(in.Description)
	method.Status = status
	method.AssetScope = datatypes.JSON(raw)
	return nil
}

// buildVersion validates in and fills omitted JSON documents from base.
func buildVersion(in VersionInput, base *models.ValuationMethodVersion) (*models.ValuationMethodVersion, error) {
	formulaID := strings.TrimSpace(in.FormulaID)
	if formulaID == "" && base != nil {
		formulaID = base.FormulaID
	}
	if !valuation.IsKnownFormula(formulaID) {
		return nil, apperr.Validation("unknown formula id %q", in.FormulaID)
	}
	from, err := optionalDate(in.EffectiveFrom, "effective_from")
	if err != nil {
		return nil, err
	}
	to, err := optionalDate(in.EffectiveTo, "effective_to")
	if err != nil {
		return nil, err
	}
	if from != nil && to != nil && *from > *to {
		return nil, apperr.Validation("effective_from %s is after effective_to %s", *from, *to)
	}

	var fallbackGraph, fallbackParams, fallbackSchema datatypes.JSON
	if base != nil {
		fallbackGraph, fallbackParams, fallbackSchema = base.Graph, base.ParamsSchema, base.MetricSchema
	}
	graph, err := jsonOr(in.Graph, fallbackGraph, `{"nodes":[]}`, "graph")
	if err != nil {
		return nil, err
	}
	params, err := jsonOr(in.ParamsSchema, fallbackParams, `{}`, "params_schema")
	if err != nil {
		return nil, err
	}
	schema, err := jsonOr(in.MetricSchema, fallbackSchema, `[]`, "metric_schema")
	if err != nil {
		return nil, err
	}
	return &models.ValuationMethodVersion{
		Graph:         graph,
		ParamsSchema:  params,
		MetricSchema:  schema,
		FormulaID:     formulaID,
		EffectiveFrom: from,
		EffectiveTo:   to,
		Notes:         strings.TrimSpace(in.Notes),
	}, nil
}

func jsonOr(raw json.RawMessage, fallback datatypes.JSON, empty, field string) (datatypes.JSON, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		if len(fallback) > 0 {
			return cloneJSON(fallback), nil
		}
		return datatypes.JSON(empty), nil
	}
	if !json.Valid([]byte(trimmed)) {
		return nil, apperr.Validation("%s is not valid JSON", field)
	}
	return datatypes.JSON(trimmed), nil
}

func cloneJSON(in datatypes.JSON) datatypes.JSON {
	if in == nil {
		return nil
	}
	out := make(datatypes.JSON, len(in))
	copy(out, in)
	return out
}
