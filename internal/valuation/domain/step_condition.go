package domain

import "math"

// StepCondition 单个时间切片上施加于价格数组的约束，用于路径依赖或提前行权特征
type StepCondition interface {
	ApplyTo(a []float64, t float64)
}

// StepConditionFactory 按当前收益数组构造步进条件；美式、喊价等行权方式各自实现
type StepConditionFactory func(payoff []float64) StepCondition

// AmericanCondition 美式行权下限：价格不得低于立即行权收益
type AmericanCondition struct {
	payoff []float64
}

// NewAmericanCondition 以当前网格上的收益数组创建美式条件
func NewAmericanCondition(payoff []float64) *AmericanCondition {
	return &AmericanCondition{payoff: payoff}
}

// ApplyTo 将价格数组抬升到行权收益之上
func (c *AmericanCondition) ApplyTo(a []float64, _ float64) {
	for i := range a {
		if a[i] < c.payoff[i] {
			a[i] = c.payoff[i]
		}
	}
}

// ShoutCondition 喊价行权下限：锁定折现后的内在价值
type ShoutCondition struct {
	payoff       []float64
	residualTime float64
	riskFreeRate float64
}

// NewShoutCondition 创建喊价条件
func NewShoutCondition(payoff []float64, residualTime, riskFreeRate float64) *ShoutCondition {
	return &ShoutCondition{
		payoff:       payoff,
		residualTime: residualTime,
		riskFreeRate: riskFreeRate,
	}
}

// ApplyTo 将价格数组抬升到按剩余期限折现的锁定收益之上
func (c *ShoutCondition) ApplyTo(a []float64, t float64) {
	disc := math.Exp(-c.riskFreeRate * (c.residualTime - t))
	for i := range a {
		if floor := disc * c.payoff[i]; a[i] < floor {
			a[i] = floor
		}
	}
}
