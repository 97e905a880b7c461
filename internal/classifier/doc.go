// Package classifier labels a flattened army list with the archetype of its
// nearest neighbours in a knowledge bank.
//
// Classification is lazy k-nearest-neighbour: there is no training step and
// no model state beyond the bank. Each call enumerates one snapshot,
// discards entries of other factions, ranks the rest by weighted multiset
// edit distance and lets the k nearest vote.
//
// Votes count 1 each, or 1/distance when Parameters.DistanceWeighted is set.
// Under distance weighting an exact match (distance 0) wins outright. Equal
// vote totals are broken by the smallest contributing distance and then by
// label order, and are always reported through Result.Tie and Result.Tied.
package classifier
