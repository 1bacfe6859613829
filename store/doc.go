// Package store provides a hierarchical dataset/attribute store for sample
// arrays, modelled on HDF5 groups.
//
// A Group holds named float64 datasets, named scalar attributes and named
// child groups. Two implementations are provided:
//
//   - Tree: an in-memory group tree that serializes to a single binary file
//     with Encode and Decode.
//   - Badger: a group view over a BadgerDB key space, for persistent
//     incremental storage.
//
// Tree file layout:
//
//	+----------------------------+
//	| Header (32 bytes)          |
//	+----------------------------+
//	| Payload (compressed)       |
//	|   node: attrs, datasets,   |
//	|         child nodes        |
//	+----------------------------+
//
// Dataset values inside the payload use the encoding named in the header
// (Raw or Gorilla); the whole payload is compressed with the header's codec
// and protected by an xxHash64 checksum.
//
// WriteQuantity and ReadQuantity map quantity.Quantity values to datasets,
// keeping the unit in a "unit" dataset attribute.
package store
