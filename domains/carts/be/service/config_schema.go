package service

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/pricing_config.schema.json
var pricingConfigSchema []byte

var (
	compileOnce    sync.Once
	compiledSchema *jsonschema.Schema
	compileErr     error
)

// ValidatePricingConfigDocument checks a raw pricing config document against
// the embedded JSON schema. The document is admin-authored, so structural
// problems must surface on load instead of as NaN totals in quotes.
func ValidatePricingConfigDocument(raw []byte) error {
	compileOnce.Do(func() {
		const key = "memory://schemas/pricing-config.json"
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(key, bytes.NewReader(pricingConfigSchema)); err != nil {
			compileErr = fmt.Errorf("register pricing config schema: %w", err)
			return
		}
		compiledSchema, compileErr = compiler.Compile(key)
	})
	if compileErr != nil {
		return compileErr
	}

	var document any
	if err := json.Unmarshal(raw, &document); err != nil {
		return fmt.Errorf("decode pricing config: %w", err)
	}
	if err := compiledSchema.Validate(document); err != nil {
		return fmt.Errorf("pricing config validation: %w", err)
	}
	return nil
}
