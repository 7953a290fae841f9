// Package wd1772 implements a cycle-accurate WD1772 Floppy Disk
// Controller and its attached DMA engine, as found in an Atari
// ST-class machine. It reproduces the externally observable timing of
// the real controller (index pulses, sector search, motor spin-up,
// step rate) closely enough that copy-protection schemes, custom
// loaders, and demos that depend on FDC timing continue to work.
//
// The controller does not decode real MFM bit streams: track data is
// synthesized from a fixed IBM layout over ordered 512-byte sectors
// (see the geometry package), and Write-Track is acknowledged without
// interpreting its input stream. The 68k CPU, host memory bus, disk
// image storage, and interrupt controller are all external
// collaborators, injected through the Memory, IRQController and
// DiskImage interfaces rather than referenced as globals.
package wd1772
