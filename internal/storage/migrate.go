package storage

import (
	"github.com/zat/initiative/internal/models"
)

// CurrentVersion is the schemaVersion written by Save.
const CurrentVersion = 3

// document is the raw decoded blob. Migrations work on it instead of on
// models.AppState so each step only knows the shape it rewrites.
type document = map[string]any

type migration struct {
	from int
	name string
	up   func(doc document, now string)
}

// migrations run in order; a blob at version v runs every step with from >= v.
// Blobs written before versioning have no schemaVersion and count as 1.
var migrations = []migration{
	{from: 1, name: "groups: backfill course, instructor and capacity", up: migrateGroups},
	{from: 2, name: "students: single group membership and default flags", up: migrateStudents},
}

// migrate rewrites doc in place up to CurrentVersion and reports the version
// it started from.
func migrate(doc document, now string) int {
	version := 1
	if v, ok := doc["schemaVersion"].(float64); ok && v >= 1 {
		version = int(v)
	}
	for _, m := range migrations {
		if m.from >= version {
			m.up(doc, now)
		}
	}
	doc["schemaVersion"] = float64(CurrentVersion)
	return version
}

func migrateGroups(doc document, now string) {
	firstCourse := ""
	if courses, ok := doc["courses"].([]any); ok && len(courses) > 0 {
		if c, ok := courses[0].(map[string]any); ok {
			firstCourse, _ = c["id"].(string)
		}
	}

	for _, g := range objects(doc, "groups") {
		if !truthy(g["courseId"]) {
			g["courseId"] = firstCourse
		}
		if !truthy(g["name"]) {
			if truthy(g["nameEn"]) {
				g["name"] = g["nameEn"]
			} else {
				g["name"] = models.DefaultGroupName
			}
		}
		delete(g, "nameEn")
		if !truthy(g["instructorName"]) {
			g["instructorName"] = ""
		}
		// 0 and missing both mean "no limit"
		if !truthy(g["maxCapacity"]) {
			g["maxCapacity"] = nil
		}
		if !truthy(g["createdAt"]) {
			g["createdAt"] = now
		}
	}
}

func migrateStudents(doc document, now string) {
	for _, s := range objects(doc, "students") {
		if _, ok := s["isNew"]; !ok || s["isNew"] == nil {
			s["isNew"] = true
		}
		for _, k := range []string{"certificateFeePaid", "firstInstallmentPaid", "secondInstallmentPaid"} {
			if _, ok := s[k].(bool); !ok {
				s[k] = false
			}
		}
		if _, ok := s["courseId"]; !ok {
			s["courseId"] = nil
		}
		if _, ok := s["groupId"]; !ok {
			s["groupId"] = nil
			if ids, ok := s["groupIds"].([]any); ok && len(ids) > 0 && truthy(ids[0]) {
				s["groupId"] = ids[0]
			}
		}
		delete(s, "groupIds")
		if !truthy(s["createdAt"]) {
			s["createdAt"] = now
		}
	}
}

// objects returns the JSON objects of the named collection, skipping
// anything that is not an object.
func objects(doc document, key string) []map[string]any {
	items, _ := doc[key].([]any)
	out := make([]map[string]any, 0, len(items))
	for _, it := range items {
		if m, ok := it.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case string:
		return x != ""
	case bool:
		return x
	case float64:
		return x != 0
	default:
		return true
	}
}
