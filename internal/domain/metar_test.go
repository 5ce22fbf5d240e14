package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractWind(t *testing.T) {
	t.Run("steady wind with visibility", func(t *testing.T) {
		wind, vis, err := ExtractWind("ENGM 121250Z 19010KT 9999 FEW030 05/01 Q1013 NOSIG")
		require.NoError(t, err)

		require.NotNil(t, wind.Direction)
		assert.Equal(t, 190, *wind.Direction)
		assert.Equal(t, 10, wind.SpeedKnots)
		assert.Nil(t, wind.GustKnots)
		assert.False(t, wind.Calm)
		assert.False(t, wind.Variable)
		assert.True(t, wind.Steady())

		require.NotNil(t, vis.Meters)
		assert.Equal(t, 10000, *vis.Meters)
		assert.False(t, vis.Low())
	})

	t.Run("gusts", func(t *testing.T) {
		wind, vis, err := ExtractWind("ENBR 121250Z 24015G28KT 8000 -RA BKN012 08/06 Q0998")
		require.NoError(t, err)

		require.NotNil(t, wind.GustKnots)
		assert.Equal(t, 28, *wind.GustKnots)
		assert.Equal(t, 15, wind.SpeedKnots)
		assert.Equal(t, 8000, *vis.Meters)
	})

	t.Run("unbounded variable", func(t *testing.T) {
		wind, vis, err := ExtractWind("ENZV 121250Z VRB03KT CAVOK 10/05 Q1020")
		require.NoError(t, err)

		assert.True(t, wind.Variable)
		assert.False(t, wind.Calm)
		assert.Nil(t, wind.Direction)
		assert.Nil(t, wind.Range)
		assert.Equal(t, 3, wind.SpeedKnots)
		assert.Equal(t, 10000, *vis.Meters)

		_, ok := wind.EffectiveDirection()
		assert.False(t, ok)
	})

	t.Run("bounded variable arc", func(t *testing.T) {
		wind, _, err := ExtractWind("ENBR 121250Z 21010KT 180V240 9999 SCT020 12/08 Q1008")
		require.NoError(t, err)

		assert.True(t, wind.Variable)
		assert.Nil(t, wind.Direction)
		require.NotNil(t, wind.Range)
		assert.Equal(t, VariableRange{From: 180, To: 240}, *wind.Range)

		dir, ok := wind.EffectiveDirection()
		assert.True(t, ok)
		assert.Equal(t, 210, dir)
	})

	t.Run("explicit calm", func(t *testing.T) {
		wind, _, err := ExtractWind("ENGM 121250Z 00000KT 9999 FEW030 05/01 Q1013")
		require.NoError(t, err)

		assert.True(t, wind.Calm)
		assert.False(t, wind.Variable)
		assert.Nil(t, wind.Direction)
	})

	t.Run("light wind with direction is calm", func(t *testing.T) {
		wind, _, err := ExtractWind("ENTO 121250Z 27002KT 9999 FEW030 05/01 Q1013")
		require.NoError(t, err)

		assert.True(t, wind.Calm)
		assert.Nil(t, wind.Direction)
	})

	t.Run("calm takes precedence over variable", func(t *testing.T) {
		wind, _, err := ExtractWind("ENTO 121250Z VRB01KT 9999 FEW030 05/01 Q1013")
		require.NoError(t, err)

		assert.True(t, wind.Calm)
		assert.False(t, wind.Variable)
	})

	t.Run("metres per second", func(t *testing.T) {
		wind, _, err := ExtractWind("ULLI 121230Z 09005MPS 9999 SCT033 M02/M06 Q1021")
		require.NoError(t, err)

		assert.Equal(t, 90, *wind.Direction)
		assert.Equal(t, 10, wind.SpeedKnots)
	})

	t.Run("fog and low visibility", func(t *testing.T) {
		_, vis, err := ExtractWind("ENGM 121250Z 19010KT 0400 FZFG VV002 M01/M01 Q1013")
		require.NoError(t, err)

		assert.Equal(t, 400, *vis.Meters)
		assert.True(t, vis.Fog)
		assert.True(t, vis.Low())
	})

	t.Run("statute miles", func(t *testing.T) {
		_, vis, err := ExtractWind("KJFK 121251Z 31012KT 1/2SM FG OVC002 08/08 A3001")
		require.NoError(t, err)

		assert.Equal(t, 805, *vis.Meters)
		assert.True(t, vis.Low())
	})

	t.Run("statute miles with whole and fraction", func(t *testing.T) {
		_, vis, err := ExtractWind("KJFK 191251Z 19010KT 1 1/2SM BR OVC005 12/11 A2992")
		require.NoError(t, err)

		require.NotNil(t, vis.Meters)
		assert.Equal(t, 2414, *vis.Meters)
		assert.False(t, vis.Low())
	})

	t.Run("missing visibility is not low", func(t *testing.T) {
		_, vis, err := ExtractWind("ENGM 121250Z 19010KT")
		require.NoError(t, err)

		assert.Nil(t, vis.Meters)
		assert.False(t, vis.Low())
	})

	t.Run("trend groups are ignored", func(t *testing.T) {
		wind, vis, err := ExtractWind("ENGM 121250Z 19010KT 9999 FEW030 05/01 Q1013 BECMG 01020KT 0500 FG")
		require.NoError(t, err)

		assert.Equal(t, 190, *wind.Direction)
		assert.Equal(t, 10000, *vis.Meters)
		assert.False(t, vis.Fog)
	})

	t.Run("remarks are ignored", func(t *testing.T) {
		wind, _, err := ExtractWind("ENGM 121250Z 19010KT 9999 RMK WIND 2000FT 22030KT=")
		require.NoError(t, err)

		assert.Equal(t, 190, *wind.Direction)
		assert.Equal(t, 10, wind.SpeedKnots)
	})
}

func TestExtractWind_Errors(t *testing.T) {
	cases := []struct {
		name   string
		report string
	}{
		{name: "empty", report: ""},
		{name: "nil report", report: "ENGM 121250Z NIL="},
		{name: "missing wind", report: "ENGM 121250Z /////KT 9999 Q1013"},
		{name: "direction out of range", report: "ENGM 121250Z 40010KT 9999 Q1013"},
		{name: "gust below speed", report: "ENGM 121250Z 19020G05KT 9999 Q1013"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := ExtractWind(tc.report)
			require.Error(t, err)

			var pe *ParseError
			require.True(t, errors.As(err, &pe))
			assert.Equal(t, tc.report, pe.Report)
		})
	}
}

func TestVariableRange_Midpoint(t *testing.T) {
	assert.Equal(t, 210, VariableRange{From: 180, To: 240}.Midpoint())
	assert.Equal(t, 360, VariableRange{From: 340, To: 20}.Midpoint())
	assert.Equal(t, 10, VariableRange{From: 350, To: 30}.Midpoint())
}

func TestReportICAO(t *testing.T) {
	assert.Equal(t, "ENGM", ReportICAO("ENGM 121250Z 19010KT 9999"))
	assert.Equal(t, "ENGM", ReportICAO("METAR ENGM 121250Z 19010KT 9999"))
	assert.Equal(t, "ENGM", ReportICAO("SPECI COR ENGM 121250Z 19010KT 9999"))
	assert.Empty(t, ReportICAO("121250Z 19010KT"))
	assert.Empty(t, ReportICAO(""))
}

func TestParseObservation(t *testing.T) {
	report := "ENGM 121250Z 19010KT 9999 FEW030 05/01 Q1013"
	obs, err := ParseObservation(report)
	require.NoError(t, err)

	assert.Equal(t, "ENGM", obs.ICAO)
	assert.Equal(t, report, obs.Raw)
	assert.Equal(t, 190, *obs.Wind.Direction)
}
