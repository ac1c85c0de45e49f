/*
Package read provides source adapters: restartable stages that serve tuples
of array values straight from on-disk layouts.

Three layouts are covered:

  - [SchemaReader]: one HDF5 file whose groups each hold a set of named
    datasets; iteration serves one tuple per group, ordered by a schema.
  - [DirReader]: several directories holding files paired by a wildcard tag
    in their names; iteration serves one tuple per tag.
  - [StripedReader]: files that each hold the same number of replicas along
    their leading axis; iteration r serves the concatenation of replica r
    across all files.

Each adapter satisfies the stream.Stage contract. The storage format stays
opaque to the rest of the pipeline: downstream stages only see Series values.
*/
package read
