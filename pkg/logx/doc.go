// Package logx is noticeboard's structured logger, a thin layer over zerolog.
//
// Console output is human readable with a short file:line caller; the file
// sink is JSON. Level and sinks follow config reloads through Service.Apply.
package logx
