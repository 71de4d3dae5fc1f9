package repositories

import (
	"fmt"
	"strings"
	"unicode"

	"bursary-portal-backend/config"
	"bursary-portal-backend/db/models"

	"github.com/blevesearch/bleve/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const applicationsIndex = "applications"

type applicationDocument struct {
	ID              string `json:"id"`
	FullName        string `json:"full_name"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	NationalID      string `json:"national_id,omitempty"`
	County          string `json:"county"`
	SubCounty       string `json:"sub_county"`
	SchoolName      string `json:"school_name"`
	ApplicationType string `json:"application_type"`
	Status          string `json:"status"`
	// Identifiers without punctuation, so "+254 711-000000" is one term.
	PhoneKey      string `json:"phone_key,omitempty"`
	NationalIDKey string `json:"national_id_key,omitempty"`
}

// identifierKey lowercases s and keeps only its letters and digits.
func identifierKey(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return -1
	}, s)
}

func toApplicationDocument(app models.Application) applicationDocument {
	doc := applicationDocument{
		ID:              app.ID.String(),
		FullName:        app.FullName,
		Email:           app.Email,
		Phone:           app.Phone,
		County:          app.County,
		SubCounty:       app.SubCounty,
		SchoolName:      app.SchoolName,
		ApplicationType: string(app.ApplicationType),
		Status:          string(app.Status),
		PhoneKey:        identifierKey(app.Phone),
	}
	if app.NationalID != nil {
		doc.NationalID = *app.NationalID
		doc.NationalIDKey = identifierKey(*app.NationalID)
	}
	return doc
}

// IndexApplication adds the application or replaces its previous document.
func (r *BleveRepository) IndexApplication(app models.Application) error {
	if err := r.indexer.IndexDocument(applicationsIndex, app.ID.String(), toApplicationDocument(app)); err != nil {
		config.Logger.Error("Failed to index application into Bleve",
			zap.Error(err),
			zap.String("application_id", app.ID.String()))
		return err
	}
	return nil
}

func (r *BleveRepository) IndexExistingApplications(apps []models.Application) error {
	if len(apps) == 0 {
		config.Logger.Info("No applications to index into Bleve.")
		return nil
	}

	docs := make(map[string]interface{}, len(apps))
	for _, app := range apps {
		docs[app.ID.String()] = toApplicationDocument(app)
	}

	if err := r.indexer.BulkIndexDocuments(applicationsIndex, docs); err != nil {
		config.Logger.Error("Failed to bulk index applications into Bleve", zap.Error(err))
		return err
	}
	return nil
}

func (r *BleveRepository) DeleteApplication(applicationID string) error {
	if err := r.indexer.DeleteDocument(applicationsIndex, applicationID); err != nil {
		config.Logger.Error("Failed to delete application from Bleve",
			zap.Error(err),
			zap.String("application_id", applicationID))
		return err
	}
	return nil
}

// SearchApplicationIDs returns the ids of applications matching the
// free-text query, best match first.
func (r *BleveRepository) SearchApplicationIDs(queryString string, limit int) ([]uuid.UUID, error) {
	queryString = strings.TrimSpace(strings.ToLower(queryString))
	if queryString == "" {
		return []uuid.UUID{}, nil
	}

	booleanQuery := bleve.NewBooleanQuery()

	// Phrase matches rank highest
	for _, field := range []string{"full_name", "school_name", "county", "sub_county"} {
		phraseQuery := bleve.NewMatchPhraseQuery(queryString)
		phraseQuery.SetField(field)
		phraseQuery.SetBoost(5.0)
		booleanQuery.AddShould(phraseQuery)
	}

	for _, field := range []string{"full_name", "email", "school_name", "county", "sub_county"} {
		matchQuery := bleve.NewMatchQuery(queryString)
		matchQuery.SetField(field)
		matchQuery.SetBoost(3.0)
		booleanQuery.AddShould(matchQuery)
	}

	// Single words also match as typos or prefixes
	if !strings.ContainsAny(queryString, " \t") {
		for _, field := range []string{"full_name", "school_name"} {
			fuzzyQuery := bleve.NewFuzzyQuery(queryString)
			fuzzyQuery.SetField(field)
			fuzzyQuery.SetFuzziness(1)
			fuzzyQuery.SetBoost(2.0)
			booleanQuery.AddShould(fuzzyQuery)

			prefixQuery := bleve.NewPrefixQuery(queryString)
			prefixQuery.SetField(field)
			prefixQuery.SetBoost(1.5)
			booleanQuery.AddShould(prefixQuery)
		}
	}

	// Exact identifiers
	if key := identifierKey(queryString); key != "" {
		for _, field := range []string{"national_id_key", "phone_key"} {
			termQuery := bleve.NewTermQuery(key)
			termQuery.SetField(field)
			termQuery.SetBoost(6.0)
			booleanQuery.AddShould(termQuery)
		}
	}

	result, err := r.indexer.SearchIndex(applicationsIndex, booleanQuery, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search applications: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(result.Hits))
	for _, hit := range result.Hits {
		id, err := uuid.Parse(hit.ID)
		if err != nil {
			config.Logger.Warn("Skipping search hit with invalid id", zap.String("id", hit.ID))
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}
