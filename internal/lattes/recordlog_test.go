package lattes_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Ordep1234555/lattes-analysis/internal/lattes"
)

func strptr(s string) *string { return &s }

func TestRecordLogRoundTrip(t *testing.T) {
	log := &lattes.RecordLog{Path: filepath.Join(t.TempDir(), "data.jsonl")}

	docs := []*lattes.Document{
		{
			ID:           "1",
			General:      lattes.GeneralData{FullName: strptr("José"), BirthState: strptr("SP")},
			Formations:   []lattes.Formation{},
			Institutions: map[string]lattes.Institution{},
			Courses:      map[string]lattes.Course{},
		},
		{
			ID: "2",
			Formations: []lattes.Formation{{
				Type:           lattes.FormationDoctorate,
				Status:         strptr("CONCLUIDO"),
				KnowledgeAreas: []lattes.KnowledgeArea{},
			}},
			Institutions: map[string]lattes.Institution{},
			Courses:      map[string]lattes.Course{},
		},
	}

	require.NoError(t, log.Append(docs[:1]))
	require.NoError(t, log.Append(docs[1:]))

	var got []*lattes.Document
	for doc, err := range log.All() {
		require.NoError(t, err)
		got = append(got, doc)
	}
	require.Len(t, got, 2)
	require.Equal(t, "José", *got[0].General.FullName)
	require.Equal(t, lattes.FormationDoctorate, got[1].Formations[0].Type)
}

func TestRecordLogLiteralUTF8(t *testing.T) {
	log := &lattes.RecordLog{Path: filepath.Join(t.TempDir(), "data.jsonl")}

	require.NoError(t, log.Append([]*lattes.Document{{
		ID:      "1",
		General: lattes.GeneralData{FullName: strptr("João Conceição")},
	}}))

	raw, err := os.ReadFile(log.Path)
	require.NoError(t, err)
	require.Contains(t, string(raw), "João Conceição")
	require.NotContains(t, string(raw), `\u`)
}

func TestRecordLogEmptyCollectionsAsArrays(t *testing.T) {
	log := &lattes.RecordLog{Path: filepath.Join(t.TempDir(), "data.jsonl")}

	require.NoError(t, log.Append([]*lattes.Document{{
		ID:           "1",
		Formations:   []lattes.Formation{},
		Institutions: map[string]lattes.Institution{},
		Courses:      map[string]lattes.Course{},
	}}))

	raw, err := os.ReadFile(log.Path)
	require.NoError(t, err)
	require.Contains(t, string(raw), `"formacoes":[]`)
	require.Contains(t, string(raw), `"instituicoes":{}`)
}

func TestRecordLogSkipsBadLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.jsonl")
	content := strings.Join([]string{
		`{"numero_identificador":"1","dados_gerais":{},"formacoes":[],"instituicoes":{},"cursos":{}}`,
		`{garbage`,
		`{"numero_identificador":"3","dados_gerais":{},"formacoes":[],"instituicoes":{},"cursos":{}}`,
	}, "\n") + "\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	log := &lattes.RecordLog{Path: path}

	var ids []string
	var errs int
	for doc, err := range log.All() {
		if err != nil {
			errs++
			continue
		}
		ids = append(ids, doc.ID)
	}
	require.Equal(t, 1, errs)
	require.Equal(t, []string{"1", "3"}, ids)
}

func TestRecordLogMissingFile(t *testing.T) {
	log := &lattes.RecordLog{Path: filepath.Join(t.TempDir(), "absent.jsonl")}

	var errs int
	for _, err := range log.All() {
		require.Error(t, err)
		errs++
	}
	require.Equal(t, 1, errs)
}
