// Package interp builds a dense raster.Raster from scattered (x,y,z)
// samples, by inverse-distance weighting (IDW) or Delaunay-triangulated
// barycentric interpolation (TIN). Cells the chosen method cannot
// reach (outside every sample's search radius, or outside the
// triangulation's convex hull) are resolved by raster.Infill.
package interp
