// Package insights computes summary statistics, IQR outliers and correlations
// over the prediction logs of a model.
//
// Load reads every writer's log of a model and merges them into one table;
// columns missing from a log read as null there. Statistics only consider
// numeric columns and skip nulls.
//
//	ds, err := insights.Load(ctx, blobstore.NewLocalStore("lookout_logs"), "detector")
//	if err != nil {
//	    return err
//	}
//	report := ds.Generate(insights.DefaultIQRMultiplier)
//	_ = report.Render(os.Stdout)
package insights
