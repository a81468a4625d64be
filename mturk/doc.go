// Package mturk approves Mechanical Turk assignments and pays performance
// bonuses for workers who took part in the experiment.
//
//	comp, err := mturk.New(ctx, cfg, log)
//	summary, err := comp.ProcessCSV(ctx, file)
//
// The CSV needs worker_id, assignment_id and bonus columns. Every row is
// approved; rows with a positive bonus are also bonused, once per
// assignment.
package mturk
