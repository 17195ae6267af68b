package genome

import (
	"compress/gzip"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const domainTSV = `#chrom	start	end	genes
chr10	100	200	A,B
10	300	400	.
X	5	50	GENE1
`

func TestReadDomains(t *testing.T) {
	regions, err := ReadDomains(strings.NewReader(domainTSV))
	require.NoError(t, err)
	require.Len(t, regions, 3)

	assert.Equal(t, Region{Chromosome: 10, Start: 100, End: 200, Genes: []string{"A", "B"}}, regions[0])
	assert.Empty(t, regions[1].Genes)
	assert.Equal(t, ChromosomeX, regions[2].Chromosome)
}

func TestReadDomains_Errors(t *testing.T) {
	_, err := ReadDomains(strings.NewReader("1\t100\n"))
	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, 1, pe.Line)

	_, err = ReadDomains(strings.NewReader("1\tabc\t200\n"))
	assert.True(t, errors.As(err, &pe))

	_, err = ReadDomains(strings.NewReader("# header\nchrZ\t1\t2\tA\n"))
	var ire *InvalidRegionError
	require.True(t, errors.As(err, &ire))
	assert.Contains(t, err.Error(), "line 2")
}

func TestLoadIndex_Gzip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tad.tsv.gz")
	f, err := os.Create(path)
	require.NoError(t, err)
	gz := gzip.NewWriter(f)
	_, err = gz.Write([]byte(domainTSV))
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	require.NoError(t, f.Close())

	idx, err := LoadIndex(path)
	require.NoError(t, err)
	assert.Equal(t, 3, idx.Len())
	assert.Equal(t, []int{10, ChromosomeX}, idx.Chromosomes())
	assert.ElementsMatch(t, []string{"A", "B"}, idx.GenesContaining(10, 150))
}

func TestLoadIndex_StartAfterEnd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tad.tsv")
	require.NoError(t, os.WriteFile(path, []byte("1\t500\t100\tA\n"), 0644))

	idx, err := LoadIndex(path)
	assert.Nil(t, idx)
	var ire *InvalidRegionError
	assert.True(t, errors.As(err, &ire))
}

func TestLoadDomains_NotFound(t *testing.T) {
	_, err := LoadDomains("/nonexistent/tad.tsv")
	assert.Error(t, err)
}
