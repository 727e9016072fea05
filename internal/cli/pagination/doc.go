// Package pagination slices and sorts the locally held all-persons batch for `list --all`:
//   - Params: --limit/--offset parsing and validation
//   - Meta: page metadata reported alongside structured output
//   - PersonSorter: field-based ordering of people
package pagination
