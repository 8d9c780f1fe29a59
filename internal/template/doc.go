// Package template defines event templates and the registry that stores them.
//
// A Template is a declarative description of a map event: its name, its
// appearance, one or more pages of commands, and the parameters those
// commands refer to. Templates hold declared values (see package params),
// never resolved ones, so the same template yields different instances for
// different overrides and random seeds.
//
// Templates are identified by (Category, ID) and keyed as "category:id".
// The Registry keeps insertion order so that ByCategory and All iterate
// deterministically.
package template
