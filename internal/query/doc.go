// Package query is a small filter language over stored event instances.
//
// A Select holds a predicate tree built from Equals, Prefix, Within and And
// nodes. Compile turns it into one parameterized SQLite statement over the
// run store's instances table:
//
//	Select{Filter: And{Predicates: []Predicate{
//	  Prefix{Field: FieldTemplate, Prefix: "chest:"},
//	  Within{X: 0, Y: 0, W: 5, H: 5},
//	}}}
//
// becomes
//
//	SELECT ... FROM instances i JOIN runs r ON r.id = i.run_id
//	WHERE substr(i.template_key, 1, ?) = ? AND i.x >= ? AND i.x < ? AND i.y >= ? AND i.y < ?
//	ORDER BY r.seq ASC, i.seq ASC
//
// Two rules hold for every compiled query:
//
//   - Values are always bound as parameters, never interpolated. Field
//     names come from a fixed set, so no caller text reaches the SQL.
//   - Results are always ordered by run insertion order and then placement
//     order, so the same store answers the same query identically.
package query
