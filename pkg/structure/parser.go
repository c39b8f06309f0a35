package structure

import (
	"github.com/rs/zerolog"
)

// Parser runs the full document pipeline: decode, migrate-if-needed,
// validate, construct model. Migration and validation are two strictly
// sequential passes.
type Parser struct {
	migrator  *Migrator
	validator *Validator
	logger    zerolog.Logger
}

// NewParser creates a parser with a wall-clock migrator.
func NewParser(logger zerolog.Logger) *Parser {
	return &Parser{
		migrator:  NewMigrator(),
		validator: NewValidator(),
		logger:    logger.With().Str("component", "structure-parser").Logger(),
	}
}

// WithMigrator replaces the parser's migrator, used by tests that need a
// fixed clock.
func (p *Parser) WithMigrator(m *Migrator) *Parser {
	p.migrator = m
	return p
}

// ParseFile loads, migrates, and validates a structure document from disk
// and returns its model. Schema and migration failures are surfaced to the
// caller, never downgraded to warnings.
func (p *Parser) ParseFile(path string) (*Model, error) {
	raw, err := ReadDocument(path)
	if err != nil {
		return nil, err
	}

	model, err := p.parseRaw(raw)
	if err != nil {
		return nil, err
	}

	p.logger.Debug().
		Str("document", path).
		Str("project", model.ProjectName()).
		Int("directories", len(model.Directories())).
		Msg("structure document parsed")

	return model, nil
}

// ParseBytes runs the pipeline on in-memory document content.
func (p *Parser) ParseBytes(data []byte) (*Model, error) {
	raw, err := DecodeDocument(data)
	if err != nil {
		return nil, err
	}
	return p.parseRaw(raw)
}

// Check migrates and validates without constructing a model, for callers
// that only want the violation set (non-strict mode).
func (p *Parser) Check(raw RawDocument) (ValidationResult, error) {
	doc, err := p.migrator.Migrate(raw)
	if err != nil {
		return ValidationResult{}, err
	}
	return p.validator.Validate(doc), nil
}

// MigrateRaw exposes the migration pass for callers that rewrite legacy
// documents in place.
func (p *Parser) MigrateRaw(raw RawDocument) (Document, error) {
	return p.migrator.Migrate(raw)
}

func (p *Parser) parseRaw(raw RawDocument) (*Model, error) {
	doc, err := p.migrator.Migrate(raw)
	if err != nil {
		return nil, err
	}

	result := p.validator.Validate(doc)
	if err := result.Err(); err != nil {
		return nil, err
	}

	return NewModel(doc)
}
