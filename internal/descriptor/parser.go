// Package descriptor converts the untyped YAML descriptor tree sent by the
// orchestration platform into the typed component model used by the rest of
// the adapter. Parsing is the schema boundary: nothing downstream ever sees
// the raw tree.
package descriptor

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"mongoprov/internal/config"
	"mongoprov/internal/domain"
)

// Parser validates raw descriptors against the configured use case
// templates. It is pure: no I/O, no retained state between calls.
type Parser struct {
	templates config.TemplateConfig
}

// NewParser creates a Parser checking against the given template identifiers.
func NewParser(templates config.TemplateConfig) *Parser {
	return &Parser{templates: templates}
}

// Parse extracts the component identified by componentID from the raw YAML
// descriptor. All failures are reported as *domain.ValidationError with
// field paths; Parse never returns infrastructure errors.
func (p *Parser) Parse(raw, componentID string) (*domain.ComponentDescriptor, error) {
	var tree map[string]interface{}
	if err := yaml.Unmarshal([]byte(raw), &tree); err != nil {
		return nil, domain.NewValidationError("descriptor", fmt.Sprintf("not valid YAML: %v", err))
	}
	if componentID == "" {
		componentID, _ = stringField(tree, "componentIdToProvision")
	}
	if componentID == "" {
		return nil, domain.NewValidationError("componentIdToProvision", "missing component to provision")
	}

	product, ok := tree["dataProduct"].(map[string]interface{})
	if !ok {
		return nil, domain.NewValidationError("dataProduct", "missing or not a mapping")
	}

	var errs []domain.FieldError
	desc := &domain.ComponentDescriptor{ComponentID: componentID}

	desc.Domain = requireString(product, "dataProduct", "domain", &errs)
	desc.System = requireString(product, "dataProduct", "system", &errs)
	desc.Environment = requireString(product, "dataProduct", "environment", &errs)
	desc.Owner = requireString(product, "dataProduct", "dataProductOwner", &errs)
	desc.SystemMajorVersion = requireInt(product, "dataProduct", "version", &errs)
	desc.DeveloperGroup = optionalStringList(product, "dataProduct", "devGroup", &errs)

	component := findComponent(product, componentID)
	if component == nil {
		errs = append(errs, domain.FieldError{
			Field:  "componentIdToProvision",
			Reason: fmt.Sprintf("component %q not found in descriptor", componentID),
		})
		return nil, &domain.ValidationError{Errors: errs}
	}

	desc.UseCaseTemplateID, _ = stringField(component, "useCaseTemplateId")
	if desc.UseCaseTemplateID != p.templates.ID {
		errs = append(errs, domain.FieldError{
			Field: "component.useCaseTemplateId",
			Reason: fmt.Sprintf("does not match: component=%q, expected=%q",
				desc.UseCaseTemplateID, p.templates.ID),
		})
	}

	desc.Collections = p.parseCollections(component, &errs)

	if len(errs) > 0 {
		return nil, &domain.ValidationError{Errors: errs}
	}
	return desc, nil
}

func (p *Parser) parseCollections(component map[string]interface{}, errs *[]domain.FieldError) []domain.CollectionSpec {
	rawSubs, ok := component["components"].([]interface{})
	if !ok || len(rawSubs) == 0 {
		*errs = append(*errs, domain.FieldError{Field: "component.components", Reason: "missing or empty collection list"})
		return nil
	}

	specs := make([]domain.CollectionSpec, 0, len(rawSubs))
	seen := make(map[string]bool, len(rawSubs))
	for i, rawSub := range rawSubs {
		path := fmt.Sprintf("component.components[%d]", i)
		sub, ok := rawSub.(map[string]interface{})
		if !ok {
			*errs = append(*errs, domain.FieldError{Field: path, Reason: "not a mapping"})
			continue
		}

		spec := domain.CollectionSpec{}
		spec.Name, _ = stringField(sub, "collection")
		if spec.Name == "" {
			*errs = append(*errs, domain.FieldError{Field: path + ".collection", Reason: "collection name is empty"})
			continue
		}
		if seen[spec.Name] {
			*errs = append(*errs, domain.FieldError{
				Field:  path + ".collection",
				Reason: fmt.Sprintf("duplicate collection name %q", spec.Name),
			})
			continue
		}
		seen[spec.Name] = true

		spec.UseCaseTemplateID, _ = stringField(sub, "useCaseTemplateId")
		if spec.UseCaseTemplateID != "" && spec.UseCaseTemplateID != p.templates.SubID {
			*errs = append(*errs, domain.FieldError{
				Field: path + ".useCaseTemplateId",
				Reason: fmt.Sprintf("does not match: component=%q, expected=%q",
					spec.UseCaseTemplateID, p.templates.SubID),
			})
		}

		if rawSchema, ok := stringField(sub, "schema"); ok && rawSchema != "" {
			var validator map[string]interface{}
			if err := json.Unmarshal([]byte(rawSchema), &validator); err != nil {
				*errs = append(*errs, domain.FieldError{
					Field:  path + ".schema",
					Reason: fmt.Sprintf("invalid JSON: %v", err),
				})
			} else {
				spec.Validator = validator
			}
		}
		if remove, ok := sub["removeData"].(bool); ok {
			spec.RemoveData = remove
		}

		specs = append(specs, spec)
	}
	return specs
}

// findComponent locates a component by id in the data product tree.
func findComponent(product map[string]interface{}, componentID string) map[string]interface{} {
	components, ok := product["components"].([]interface{})
	if !ok {
		return nil
	}
	for _, raw := range components {
		component, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		if id, _ := stringField(component, "id"); id == componentID {
			return component
		}
	}
	return nil
}

func stringField(m map[string]interface{}, key string) (string, bool) {
	s, ok := m[key].(string)
	return s, ok
}

func requireString(m map[string]interface{}, path, key string, errs *[]domain.FieldError) string {
	v, present := m[key]
	if !present {
		*errs = append(*errs, domain.FieldError{Field: path + "." + key, Reason: "required field is missing"})
		return ""
	}
	s, ok := v.(string)
	if !ok || s == "" {
		*errs = append(*errs, domain.FieldError{Field: path + "." + key, Reason: "must be a non-empty string"})
		return ""
	}
	return s
}

func requireInt(m map[string]interface{}, path, key string, errs *[]domain.FieldError) int {
	v, present := m[key]
	if !present {
		*errs = append(*errs, domain.FieldError{Field: path + "." + key, Reason: "required field is missing"})
		return 0
	}
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		if n == float64(int(n)) {
			return int(n)
		}
	}
	*errs = append(*errs, domain.FieldError{Field: path + "." + key, Reason: "must be an integer"})
	return 0
}

func optionalStringList(m map[string]interface{}, path, key string, errs *[]domain.FieldError) []string {
	v, present := m[key]
	if !present || v == nil {
		return nil
	}
	raw, ok := v.([]interface{})
	if !ok {
		*errs = append(*errs, domain.FieldError{Field: path + "." + key, Reason: "must be a list of strings"})
		return nil
	}
	out := make([]string, 0, len(raw))
	for i, item := range raw {
		s, ok := item.(string)
		if !ok {
			*errs = append(*errs, domain.FieldError{
				Field:  fmt.Sprintf("%s.%s[%d]", path, key, i),
				Reason: "must be a string",
			})
			continue
		}
		out = append(out, s)
	}
	return out
}
