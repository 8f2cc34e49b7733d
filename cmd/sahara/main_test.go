package main

import (
	"context"
	"strings"
	"testing"

	"github.com/spf13/viper"

	"github.com/stretchr/testify/assert"
)

func TestInitQuotaStores(t *testing.T) {
	v := viper.New()
	v.SetConfigType("yaml")
	err := v.ReadConfig(strings.NewReader("store:\n  type: firestore"))
	assert.Nil(t, err)
	ks, cs, err := initQuotaStores(context.Background(), v, nil)
	assert.Nil(t, err)
	assert.Nil(t, ks)
	assert.Nil(t, cs)
}

func TestInitQuotaStores_Default(t *testing.T) {
	v := viper.New()
	_, _, err := initQuotaStores(context.Background(), v, nil)
	assert.Nil(t, err)
}

func TestInitQuotaStores_Fail(t *testing.T) {
	v := viper.New()
	v.SetConfigType("yaml")
	err := v.ReadConfig(strings.NewReader("store:\n  type: olia"))
	assert.Nil(t, err)
	_, _, err = initQuotaStores(context.Background(), v, nil)
	assert.NotNil(t, err)
}
