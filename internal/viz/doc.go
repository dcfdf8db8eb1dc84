// Package viz renders calibration results in the terminal.
//
//   - [Canvas]: Braille pixel canvas, with response and deformation plots
//   - [CoefficientReport] and [MetricsReport]: lipgloss panels for the
//     calibrated coefficients and the recorded metrics
//   - Theme selection with 5 built-in color schemes, applied by [ApplyTheme]
package viz
