package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/couchcryptid/parcel-geodata-service/internal/domain"
	"github.com/couchcryptid/parcel-geodata-service/internal/geo"
	"github.com/couchcryptid/parcel-geodata-service/internal/lookup"
	"github.com/spf13/cobra"
)

func parcelCmd(a *app) *cobra.Command {
	var lat, lng float64
	var format string

	c := &cobra.Command{
		Use:   "parcel [id]",
		Short: "Resolve a parcel by TERYT identifier or by position",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				p   domain.Parcel
				err error
			)
			switch {
			case len(args) == 1:
				p, err = a.svc.ParcelByID(cmd.Context(), args[0])
			case cmd.Flags().Changed("lat") && cmd.Flags().Changed("lng"):
				p, err = a.svc.ParcelByPoint(cmd.Context(), lat, lng)
			default:
				return errors.New("either an identifier or both --lat and --lng are required")
			}
			if err != nil {
				return describe(err)
			}

			switch format {
			case "json":
				return printJSON(cmd.OutOrStdout(), p)
			case "geojson":
				return printJSON(cmd.OutOrStdout(), geo.ParcelFeature(p))
			default:
				return fmt.Errorf("unknown format %q (json|geojson)", format)
			}
		},
	}

	c.Flags().Float64Var(&lat, "lat", 0, "WGS84 latitude")
	c.Flags().Float64Var(&lng, "lng", 0, "WGS84 longitude")
	c.Flags().StringVar(&format, "format", "json", "output format: json|geojson")
	return c
}

func addressCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "address <text>",
		Short: "Geocode a free-text address",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.svc.Address(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return describe(err)
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
}

func catchmentCmd(a *app) *cobra.Command {
	var lat, lng float64

	c := &cobra.Command{
		Use:   "catchment",
		Short: "Find the stormwater catchment containing a position (null if none)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return printJSON(cmd.OutOrStdout(), a.svc.Catchment(cmd.Context(), lat, lng))
		},
	}

	c.Flags().Float64Var(&lat, "lat", 0, "WGS84 latitude")
	c.Flags().Float64Var(&lng, "lng", 0, "WGS84 longitude")
	_ = c.MarkFlagRequired("lat")
	_ = c.MarkFlagRequired("lng")
	return c
}

func retentionCmd(a *app) *cobra.Command {
	var (
		in          domain.RetentionInput
		development string
		lat, lng    float64
	)

	c := &cobra.Command{
		Use:   "retention",
		Short: "Compute the required stormwater retention volume",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req := lookup.RetentionRequest{RetentionInput: in}
			req.Development = domain.DevelopmentType(development)
			if cmd.Flags().Changed("lat") || cmd.Flags().Changed("lng") {
				req.Position = &domain.LatLng{Lat: lat, Lng: lng}
			}

			res, err := a.svc.Retention(cmd.Context(), req)
			if err != nil {
				return describe(err)
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}

	f := c.Flags()
	f.Float64Var(&in.RoofArea, "roof", 0, "roof area in m²")
	f.Float64Var(&in.RoofOutsideFootprint, "roof-outside", 0, "roof area outside the building footprint in m²")
	f.Float64Var(&in.SealedArea, "sealed", 0, "sealed surface area in m²")
	f.Float64Var(&in.PermeableArea, "permeable", 0, "permeable surface area in m²")
	f.StringVar(&development, "development", string(domain.DevelopmentSingleFamily), "single_family|multi_family|other")
	f.BoolVar(&in.ConnectedToSewer, "connected", false, "drains to the stormwater sewer")
	f.BoolVar(&in.CatchmentOverloaded, "overloaded", false, "catchment is overloaded (ignored when --lat/--lng are given)")
	f.Float64Var(&lat, "lat", 0, "investment latitude, enables the catchment lookup")
	f.Float64Var(&lng, "lng", 0, "investment longitude, enables the catchment lookup")
	return c
}

// describe prefixes an error with its lookup kind.
func describe(err error) error {
	return fmt.Errorf("%s: %w", domain.KindOf(err), err)
}
