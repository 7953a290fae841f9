// Package imagestore is the default disk-image collaborator for the
// wd1772 FDC/DMA core. The core treats disk image access as an external
// capability (read_sector, write_sector, disk_details, is_write_protected);
// this package is one concrete, swappable implementation of that capability
// backed by an afero.Fs, supporting raw .ST images, RLE-compressed .MSA
// images, and images carried inside zip/gzip/7z/rar/xz/zstd containers.
package imagestore
