/*
Package stream provides lazy, composable pipeline stages over tuples of
array-like values.

A stage is an [iter.Seq2] of ([pull.Pull], error): a restartable producer of
fixed-arity tuples. Stages wrap an upstream stage and yield a transformed
sequence without materializing the source, so arbitrarily large datasets can
be filtered, re-chunked, re-sampled and batched with bounded memory.

  - [Chunks] decomposes a single array into strided, bounded slices.
  - [SafeZip] synchronizes several sequences with per-stream strictness.
  - [Break] re-chunks the arrays inside each tuple.
  - [Filter], [Extend], [Censor], [Resample] drop, grow or subset tuples.
  - [NewPrefetch] and [LazyBatched] provide look-ahead and ordered batching.

# Errors

Construction problems (bad sizes, illegal option combinations, mask length
mismatches) are reported eagerly by the constructors. Problems detected while
iterating (streams ending out of step, out-of-bound weights) are yielded
through the error slot and end that pass. A stage never retries and never
drops data silently except where documented (Filter predicates, Censor runs,
Resample's drop-empty).

# Sharing

Values handed between stages are not copied by default. Sliced outputs may
alias upstream storage depending on the Series implementation; consumers must
not assume independence unless a stage documents it.
*/
package stream
